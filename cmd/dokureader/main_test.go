package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"--data", dataDir, "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTopicDocumentAndExportCommands(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	docs := t.TempDir()
	note := filepath.Join(docs, "notiz.txt")
	if err := os.WriteFile(note, []byte("Termin am Montag\n"), 0o644); err != nil {
		t.Fatalf("write note: %v", err)
	}
	broken := filepath.Join(docs, "kaputt.pdf")
	if err := os.WriteFile(broken, []byte("%PDF-1.4 truncated"), 0o644); err != nil {
		t.Fatalf("write broken pdf: %v", err)
	}

	if _, err := run(t, dataDir, "topic", "create", "Steuer"); err != nil {
		t.Fatalf("topic create: %v", err)
	}
	if _, err := run(t, dataDir, "topic", "use", "Steuer"); err != nil {
		t.Fatalf("topic use: %v", err)
	}
	out, err := run(t, dataDir, "doc", "add", note, broken, filepath.Join(docs, "fehlt.txt"))
	if err != nil {
		t.Fatalf("doc add: %v", err)
	}
	if !strings.Contains(out, "added 2 document(s)") || !strings.Contains(out, "fehlt.txt") {
		t.Fatalf("unexpected add output %q", out)
	}

	dest := filepath.Join(t.TempDir(), "steuer.pdf")
	out, err = run(t, dataDir, "export", "run", "-o", dest)
	if err != nil {
		t.Fatalf("export run: %v", err)
	}
	for _, want := range []string{"exported " + dest, "notiz.txt (1 page, render)", "skip kaputt.pdf", "1 converted, 1 skipped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("export output %q lacks %q", out, want)
		}
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	out, err = run(t, dataDir, "export", "status")
	if err != nil {
		t.Fatalf("export status: %v", err)
	}
	if !strings.Contains(out, "done") {
		t.Fatalf("status should report done, got %q", out)
	}
	out, err = run(t, dataDir, "export", "history")
	if err != nil {
		t.Fatalf("export history: %v", err)
	}
	if !strings.Contains(out, "Steuer") {
		t.Fatalf("history should list the run, got %q", out)
	}
}

func TestFailedExportReturnsError(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	if _, err := run(t, dataDir, "topic", "create", "Leer"); err != nil {
		t.Fatalf("topic create: %v", err)
	}
	if _, err := run(t, dataDir, "export", "run", "--topic", "Leer"); err == nil {
		t.Fatalf("exporting an empty topic should fail")
	}
}

func TestPreviewCommand(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "brief.txt")
	if err := os.WriteFile(path, []byte("Sehr geehrte Damen und Herren"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	out, err := run(t, t.TempDir(), "preview", path)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "Sehr geehrte Damen und Herren") || !strings.Contains(out, "size") {
		t.Fatalf("unexpected preview output %q", out)
	}
}
