package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"dokureader/internal/modules/export/domain"
	exportout "dokureader/internal/modules/export/port/out"
	"dokureader/internal/platform/clock"
	apperrors "dokureader/internal/platform/errors"
	"dokureader/internal/platform/id"
	"dokureader/internal/platform/slug"
)

type Deps struct {
	Clock     clock.Clock
	IDs       id.Generator
	Topics    exportout.TopicSource
	Converter exportout.Converter
	Merger    exportout.Merger
	Writer    exportout.OutputWriter
	Journal   exportout.RunJournal
	History   exportout.History
	Logger    *slog.Logger
	// ExportDir receives exports without an explicit destination.
	ExportDir string
}

type ExportService struct {
	deps Deps
}

func NewExportService(deps Deps) *ExportService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &ExportService{deps: deps}
}

// Export plans, converts, merges and writes one topic. Per-document failures
// end up in the summary; only whole-run failures are returned.
func (s *ExportService) Export(ctx context.Context, req domain.Request) (domain.Summary, error) {
	run := domain.NewRun(s.deps.IDs.New(), req.Filter, s.deps.Clock.Now())
	logger := s.deps.Logger.With("run", run.ID)
	s.journal(ctx, logger, run)

	plan, err := s.deps.Topics.Plan(ctx, req.Topic, req.Filter)
	if err != nil {
		return domain.Summary{}, s.fail(ctx, logger, &run, fmt.Errorf("plan export: %w", err))
	}
	run.TopicID, run.TopicName, run.Filter = plan.TopicID, plan.TopicName, plan.Filter
	run.Documents = len(plan.Items)
	logger = logger.With("topic", plan.TopicName)
	if len(plan.Items) == 0 {
		return domain.Summary{}, s.fail(ctx, logger, &run, fmt.Errorf("%w: topic %q has no %s documents", domain.ErrNothingToExport, plan.TopicName, plan.Filter))
	}
	run.OutputPath = s.destination(req.Destination, plan)

	if err := s.advance(ctx, logger, &run, domain.StateConverting); err != nil {
		return domain.Summary{}, err
	}
	conversions, err := s.convert(ctx, logger, plan)
	if err != nil {
		return domain.Summary{}, s.fail(ctx, logger, &run, err)
	}

	if err := s.advance(ctx, logger, &run, domain.StateMerging); err != nil {
		return domain.Summary{}, err
	}
	merged, err := s.deps.Merger.Merge(ctx, conversions)
	if err != nil {
		run.Skipped = len(merged.Skipped)
		return domain.Summary{}, s.fail(ctx, logger, &run, fmt.Errorf("merge export: %w", err))
	}
	run.Succeeded, run.Skipped, run.Pages = len(merged.Succeeded), len(merged.Skipped), merged.Pages()

	if err := s.advance(ctx, logger, &run, domain.StateWriting); err != nil {
		return domain.Summary{}, err
	}
	if err := s.deps.Writer.Write(ctx, run.OutputPath, merged.PDF); err != nil {
		return domain.Summary{}, s.fail(ctx, logger, &run, &domain.WriteError{Path: run.OutputPath, Err: err})
	}

	if err := s.advance(ctx, logger, &run, domain.StateDone); err != nil {
		return domain.Summary{}, err
	}
	s.record(ctx, logger, run)
	logger.Info("export written", "path", run.OutputPath, "documents", run.Succeeded, "skipped", run.Skipped, "pages", run.Pages)
	return domain.Summary{
		RunID:      run.ID,
		TopicName:  run.TopicName,
		OutputPath: run.OutputPath,
		Succeeded:  merged.Succeeded,
		Skipped:    merged.Skipped,
		Pages:      run.Pages,
		StartedAt:  run.StartedAt,
		FinishedAt: run.UpdatedAt,
	}, nil
}

// convert runs the plan strictly in order through one conversion run.
func (s *ExportService) convert(ctx context.Context, logger *slog.Logger, plan domain.Plan) (out []domain.Conversion, err error) {
	conv, err := s.deps.Converter.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin conversion: %w", err)
	}
	defer func() {
		if cerr := conv.Close(); cerr != nil {
			logger.Warn("close conversion run", "err", cerr)
		}
	}()

	out = make([]domain.Conversion, 0, len(plan.Items))
	for _, item := range plan.Items {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(len(out), len(plan.Items), err)
		}
		c := conv.Convert(ctx, item)
		logger.Debug("document converted", "path", item.Path, "ok", c.OK, "backend", c.Backend)
		out = append(out, c)
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(len(out), len(plan.Items), err)
	}
	return out, nil
}

func cancelled(done, total int, err error) error {
	return fmt.Errorf("export cancelled after %d of %d documents: %w", done, total, err)
}

func (s *ExportService) destination(explicit string, plan domain.Plan) string {
	if strings.TrimSpace(explicit) != "" {
		if abs, err := filepath.Abs(explicit); err == nil {
			return abs
		}
		return explicit
	}
	name := fmt.Sprintf("%s_%s.pdf", slug.FileName(plan.TopicName), domain.FilterLabel(plan.Filter))
	return filepath.Join(s.deps.ExportDir, name)
}

func (s *ExportService) advance(ctx context.Context, logger *slog.Logger, run *domain.Run, to domain.State) error {
	if err := run.Advance(to, s.deps.Clock.Now()); err != nil {
		return err
	}
	logger.Debug("export state", "state", to)
	s.journal(ctx, logger, *run)
	return nil
}

// fail moves the run to Failed, persists it and returns cause.
func (s *ExportService) fail(ctx context.Context, logger *slog.Logger, run *domain.Run, cause error) error {
	if err := run.Fail(cause, s.deps.Clock.Now()); err != nil {
		return errors.Join(cause, err)
	}
	logger.Warn("export failed", "reason", run.Reason)
	s.journal(ctx, logger, *run)
	s.record(ctx, logger, *run)
	return cause
}

// Journal and history writes never fail the export itself.
func (s *ExportService) journal(ctx context.Context, logger *slog.Logger, run domain.Run) {
	if s.deps.Journal == nil {
		return
	}
	if err := s.deps.Journal.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("save run journal", "err", err)
	}
}

func (s *ExportService) record(ctx context.Context, logger *slog.Logger, run domain.Run) {
	if s.deps.History == nil {
		return
	}
	if err := s.deps.History.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("record export history", "err", err)
	}
}

// Latest reports ErrNotFound when no journal is configured.
func (s *ExportService) Latest(ctx context.Context) (domain.Run, error) {
	if s.deps.Journal == nil {
		return domain.Run{}, fmt.Errorf("%w: no export run journal", apperrors.ErrNotFound)
	}
	return s.deps.Journal.Latest(ctx)
}

func (s *ExportService) History(ctx context.Context, limit int) ([]domain.Run, error) {
	if s.deps.History == nil {
		return []domain.Run{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.deps.History.List(ctx, limit)
}
