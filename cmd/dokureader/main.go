package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dokureader/internal/bootstrap"
	"dokureader/internal/platform/config"
	"dokureader/internal/platform/logging"
	"dokureader/internal/ui/theme"
)

type rootOptions struct {
	dataDir  string
	logLevel string
	verbose  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, theme.For(os.Stderr).Fail.Render("error:"), err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "dokureader",
		Short:         "Organise documents by topic and export them as one PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data", config.DefaultDataDir(), "data directory")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "shorthand for --log-level debug")

	root.AddCommand(newTopicCmd(opts))
	root.AddCommand(newDocCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newConvertCmd(opts))
	root.AddCommand(newPreviewCmd(opts))
	root.AddCommand(newOpenCmd(opts))
	root.AddCommand(newPluginCmd(opts))
	root.AddCommand(newImportLegacyCmd(opts))
	root.AddCommand(newReindexCmd(opts))
	return root
}

func loadApp(opts *rootOptions) (*bootstrap.App, error) {
	cfg, err := config.Load(opts.dataDir)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	if opts.verbose {
		level = "debug"
	}
	cfg.Log.Level = level
	logger, err := logging.New(os.Stderr, level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, logger, os.Stderr)
}

func newTopicCmd(opts *rootOptions) *cobra.Command {
	topic := &cobra.Command{Use: "topic", Short: "Manage topics"}

	topic.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			out, err := app.LibraryCLI.CreateTopic(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "topic created: %s (%s)\n", out.Name, out.ID)
			return nil
		},
	})

	topic.AddCommand(&cobra.Command{
		Use:   "rename <topic> <new-name>",
		Short: "Rename a topic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			out, err := app.LibraryCLI.RenameTopic(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "topic renamed: %s (%s)\n", out.Name, out.ID)
			return nil
		},
	})

	topic.AddCommand(&cobra.Command{
		Use:   "delete <topic>",
		Short: "Delete a topic and its document list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			if err := app.LibraryCLI.DeleteTopic(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "topic deleted: %s\n", args[0])
			return nil
		},
	})

	topic.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			topics, err := app.LibraryCLI.ListTopics(cmd.Context())
			if err != nil {
				return err
			}
			if len(topics) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no topics")
				return nil
			}
			styles := theme.For(cmd.OutOrStdout())
			for _, t := range topics {
				marker := " "
				if t.Current {
					marker = styles.Hot.Render("*")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", marker, t.Name,
					styles.Muted.Render(fmt.Sprintf("%d documents, %d read", t.Documents, t.Read)))
			}
			return nil
		},
	})

	topic.AddCommand(&cobra.Command{
		Use:   "use <topic>",
		Short: "Select the current topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			out, err := app.LibraryCLI.UseTopic(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "current topic: %s\n", out.Name)
			return nil
		},
	})

	topic.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the current topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			out, err := app.LibraryCLI.CurrentTopic(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d documents, %d read)\n", out.Name, out.Documents, out.Read)
			return nil
		},
	})
	return topic
}

func newDocCmd(opts *rootOptions) *cobra.Command {
	doc := &cobra.Command{Use: "doc", Short: "Manage the documents of a topic"}
	var topic string
	doc.PersistentFlags().StringVarP(&topic, "topic", "t", "", "topic name or id (default: current topic)")

	var create bool
	addCmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Add documents to a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			out, err := app.LibraryCLI.AddDocuments(cmd.Context(), topic, args, create)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %d document(s)\n", out.Added)
			styles := theme.For(cmd.OutOrStdout())
			for _, path := range out.Ignored {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styles.Skip.Render("ignored"), path)
			}
			return nil
		},
	}
	addCmd.Flags().BoolVar(&create, "create", false, "create the topic when it does not exist")
	doc.AddCommand(addCmd)

	doc.AddCommand(&cobra.Command{
		Use:   "remove <path>",
		Short: "Remove a document from a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			if err := app.LibraryCLI.RemoveDocument(cmd.Context(), topic, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	})

	var filter string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the documents of a topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			docs, err := app.LibraryCLI.ListDocuments(cmd.Context(), topic, filter)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no documents")
				return nil
			}
			styles := theme.For(cmd.OutOrStdout())
			for _, d := range docs {
				mark := styles.Muted.Render("[ ]")
				if d.Read {
					mark = styles.OK.Render("[x]")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", mark, d.DisplayName, styles.Muted.Render(d.Path))
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&filter, "filter", "all", "all, read or unread")
	doc.AddCommand(listCmd)

	for _, read := range []bool{true, false} {
		read := read
		use, short := "read <path>", "Mark a document as read"
		if !read {
			use, short = "unread <path>", "Mark a document as unread"
		}
		doc.AddCommand(&cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := loadApp(opts)
				if err != nil {
					return err
				}
				out, err := app.LibraryCLI.MarkRead(cmd.Context(), topic, args[0], read)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s read=%t\n", out.DisplayName, out.Read)
				return nil
			},
		})
	}

	doc.AddCommand(&cobra.Command{
		Use:   "find <query>",
		Short: "Find documents by name across all topics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			hits, err := app.LibraryCLI.FindDocuments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, h := range hits {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", h.TopicName, h.DisplayName, h.Path)
			}
			return nil
		},
	})
	return doc
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	export := &cobra.Command{Use: "export", Short: "Export a topic as one PDF"}

	var topic, filter, output string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Convert and merge the documents of a topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			out, err := app.ExportCLI.Export(cmd.Context(), topic, filter, output)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			w := cmd.OutOrStdout()
			styles := theme.For(w)
			_, _ = fmt.Fprintf(w, "%s %s\n", styles.Title.Render("exported"), out.OutputPath)
			for _, e := range out.Succeeded {
				_, _ = fmt.Fprintf(w, "  %s %s %s\n", styles.OK.Render("ok  "), e.DisplayName,
					styles.Muted.Render(fmt.Sprintf("(%s, %s)", pages(e.Pages), e.Backend)))
			}
			for _, s := range out.Skipped {
				_, _ = fmt.Fprintf(w, "  %s %s %s\n", styles.Skip.Render("skip"), s.DisplayName, styles.Muted.Render(s.Reason))
			}
			_, _ = fmt.Fprintf(w, "%d converted, %d skipped, %s in %s\n",
				len(out.Succeeded), len(out.Skipped), pages(out.Pages), out.FinishedAt.Sub(out.StartedAt).Round(time.Millisecond))
			return nil
		},
	}
	runCmd.Flags().StringVarP(&topic, "topic", "t", "", "topic name or id (default: current topic)")
	runCmd.Flags().StringVar(&filter, "filter", "all", "all, read or unread")
	runCmd.Flags().StringVarP(&output, "output", "o", "", "destination PDF (default: export dir)")
	export.AddCommand(runCmd)

	export.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the latest export run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			run, err := app.ExportCLI.Status(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			styles := theme.For(w)
			rows := [][2]string{
				{"run", run.ID},
				{"topic", run.TopicName},
				{"filter", run.Filter},
				{"state", run.State},
				{"output", run.OutputPath},
				{"documents", fmt.Sprintf("%d (%d converted, %d skipped)", run.Documents, run.Succeeded, run.Skipped)},
				{"pages", fmt.Sprintf("%d", run.Pages)},
				{"updated", humanize.Time(run.UpdatedAt)},
			}
			if run.Reason != "" {
				rows = append(rows, [2]string{"reason", run.Reason})
			}
			for _, row := range rows {
				_, _ = fmt.Fprintf(w, "%s%s\n", styles.Key.Render(row[0]), row[1])
			}
			return nil
		},
	})

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent export runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			runs, err := app.ExportCLI.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no exports yet")
				return nil
			}
			for _, r := range runs {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d/%d\t%s\n",
					r.StartedAt.Local().Format(time.DateTime), r.State, r.TopicName, r.Succeeded, r.Documents, r.OutputPath)
			}
			return nil
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	export.AddCommand(historyCmd)
	return export
}

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a single document to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			out, err := app.ConvertCLI.ConvertFile(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "converted %s -> %s (%s, %s)\n",
				out.Path, out.Output, out.Backend, humanize.IBytes(uint64(out.Bytes)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination PDF (default: next to the input)")
	return cmd
}

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Show a text preview and metadata of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			out, err := app.PreviewCLI.Preview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			styles := theme.For(w)
			_, _ = fmt.Fprintln(w, styles.Title.Render(out.Title))
			for _, f := range out.Meta {
				_, _ = fmt.Fprintf(w, "%s%s\n", styles.Key.Render(f.Key), f.Value)
			}
			if out.Body != "" {
				_, _ = fmt.Fprintln(w)
				_, _ = fmt.Fprintln(w, strings.TrimRight(out.Body, "\n"))
			}
			if out.Truncated {
				_, _ = fmt.Fprintln(w, styles.Muted.Render("[...]"))
			}
			return nil
		},
	}
}

func newOpenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <file>",
		Short: "Open a document with the system viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			return app.PreviewCLI.Open(cmd.Context(), args[0])
		},
	}
}

func newPluginCmd(opts *rootOptions) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Converter plugin operations"}
	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List converter plugin manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			plugins, err := app.PluginCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(plugins) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, p := range plugins {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s kinds=%s\n",
					p.Name, p.Version, p.Enabled, p.Binary, strings.Join(p.Capabilities, ","))
			}
			return nil
		},
	})
	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			results, err := app.PluginCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			failed := 0
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					failed++
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			if failed > 0 {
				return fmt.Errorf("%d plugin(s) failed validation", failed)
			}
			return nil
		},
	})
	return plugin
}

func newImportLegacyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-legacy [path]",
		Short: "Import topics from the desktop application's state file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				p, err := bootstrap.DefaultLegacyStatePath()
				if err != nil {
					return err
				}
				path = p
			}
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			out, err := app.LibraryCLI.ImportLegacy(cmd.Context(), path)
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no legacy state at %s", path)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d topic(s), %d document(s)\n", out.Topics, out.Documents)
			return nil
		},
	}
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the document search index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			if err := app.LibraryCLI.Reindex(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex completed")
			return nil
		},
	}
}

func pages(n int) string {
	if n == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}
