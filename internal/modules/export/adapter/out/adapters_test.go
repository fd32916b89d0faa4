package out_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ledpdf "github.com/ledongthuc/pdf"

	exportout "dokureader/internal/modules/export/adapter/out"
	"dokureader/internal/modules/export/domain"
	librarydto "dokureader/internal/modules/library/dto"
	libraryin "dokureader/internal/modules/library/port/in"
	apperrors "dokureader/internal/platform/errors"
	"dokureader/internal/platform/pdfrender"
)

func textPDF(t *testing.T, lines int) []byte {
	t.Helper()
	raw := strings.Repeat("Zeile\n", lines)
	pdf, err := pdfrender.Text([]byte(raw))
	if err != nil {
		t.Fatalf("render fixture: %v", err)
	}
	return pdf
}

func markedPDF(t *testing.T, marker string, extraLines int) []byte {
	t.Helper()
	raw := marker + "\n" + strings.Repeat("Zeile\n", extraLines)
	pdf, err := pdfrender.Text([]byte(raw))
	if err != nil {
		t.Fatalf("render fixture: %v", err)
	}
	return pdf
}

// pageTexts extracts the plain text of every page in order.
func pageTexts(t *testing.T, payload []byte) []string {
	t.Helper()
	r, err := ledpdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("open merged pdf: %v", err)
	}
	texts := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		text, err := r.Page(i).GetPlainText(nil)
		if err != nil {
			t.Fatalf("page %d text: %v", i, err)
		}
		texts = append(texts, text)
	}
	return texts
}

func ok(path string, pdf []byte) domain.Conversion {
	return domain.Conversion{Item: domain.Item{Path: path, DisplayName: filepath.Base(path)}, OK: true, PDF: pdf, Backend: "render"}
}

func TestMergerConcatenatesInOrder(t *testing.T) {
	t.Parallel()
	twoPages := textPDF(t, 61)
	onePage := textPDF(t, 3)
	conversions := []domain.Conversion{
		ok("/d/a.txt", twoPages),
		{Item: domain.Item{Path: "/d/b.doc"}, Reason: "no converter available"},
		ok("/d/c.txt", onePage),
	}
	result, err := exportout.NewPDFCPUMerger().Merge(context.Background(), conversions)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(result.Succeeded) != 2 || result.Succeeded[0].Item.Path != "/d/a.txt" || result.Succeeded[0].Pages != 2 || result.Succeeded[1].Pages != 1 {
		t.Fatalf("unexpected entries %+v", result.Succeeded)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Item.Path != "/d/b.doc" {
		t.Fatalf("unexpected skips %+v", result.Skipped)
	}
	pages, err := exportout.PageCount(result.PDF)
	if err != nil {
		t.Fatalf("count merged pages: %v", err)
	}
	if pages != 3 || result.Pages() != 3 {
		t.Fatalf("merged %d pages, summary %d", pages, result.Pages())
	}
}

func TestMergerDemotesUnreadableOutput(t *testing.T) {
	t.Parallel()
	conversions := []domain.Conversion{
		ok("/d/kaputt.doc", []byte("%PDF-1.4 garbage %%EOF")),
		ok("/d/gut.txt", textPDF(t, 1)),
	}
	result, err := exportout.NewPDFCPUMerger().Merge(context.Background(), conversions)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(result.Succeeded) != 1 || len(result.Skipped) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !strings.HasPrefix(result.Skipped[0].Reason, "unreadable pdf output: ") {
		t.Fatalf("unexpected reason %q", result.Skipped[0].Reason)
	}
}

func TestMergerWithoutSuccessesIsEmptyExport(t *testing.T) {
	t.Parallel()
	conversions := []domain.Conversion{
		{Item: domain.Item{Path: "/d/a.doc"}, Reason: "x"},
		ok("/d/b.doc", []byte("not a pdf")),
	}
	result, err := exportout.NewPDFCPUMerger().Merge(context.Background(), conversions)
	if !errors.Is(err, domain.ErrEmptyExport) {
		t.Fatalf("expected ErrEmptyExport, got %v", err)
	}
	if len(result.Skipped) != 2 || result.PDF != nil {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestMergerKeepsPlanOrderAcrossSkips(t *testing.T) {
	t.Parallel()
	conversions := []domain.Conversion{
		ok("/d/a.pdf", markedPDF(t, "ALPHAFIRST", 60)),
		{Item: domain.Item{Path: "/d/b.doc"}, Reason: "no converter available"},
		ok("/d/c.txt", markedPDF(t, "GAMMATHIRD", 0)),
	}
	result, err := exportout.NewPDFCPUMerger().Merge(context.Background(), conversions)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	texts := pageTexts(t, result.PDF)
	if len(texts) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(texts))
	}
	if !strings.Contains(texts[0], "ALPHAFIRST") || strings.Contains(texts[0], "GAMMATHIRD") {
		t.Fatalf("page 1 should come from a.pdf, got %q", texts[0])
	}
	if strings.Contains(texts[1], "ALPHAFIRST") || strings.Contains(texts[1], "GAMMATHIRD") {
		t.Fatalf("page 2 should be the continuation of a.pdf, got %q", texts[1])
	}
	if !strings.Contains(texts[2], "GAMMATHIRD") {
		t.Fatalf("page 3 should come from c.txt, got %q", texts[2])
	}
}

func TestRepeatedMergesAgreeOnPages(t *testing.T) {
	t.Parallel()
	conversions := []domain.Conversion{ok("/d/a.txt", markedPDF(t, "ERSTES", 1)), ok("/d/b.txt", markedPDF(t, "ZWEITES", 3))}
	first, err := exportout.NewPDFCPUMerger().Merge(context.Background(), conversions)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	second, err := exportout.NewPDFCPUMerger().Merge(context.Background(), conversions)
	if err != nil {
		t.Fatalf("merge again: %v", err)
	}
	a, b := pageTexts(t, first.PDF), pageTexts(t, second.PDF)
	if len(a) != 2 || len(a) != len(b) {
		t.Fatalf("page counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("page %d differs: %q vs %q", i+1, a[i], b[i])
		}
	}
}

func TestFileRunJournal(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "export-run.json")
	journal := exportout.NewFileRunJournal(path)
	if _, err := journal.Latest(context.Background()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	run := domain.NewRun("r1", "all", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	run.TopicName = "Steuer"
	if err := journal.Save(context.Background(), run); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := run.Advance(domain.StateConverting, run.StartedAt.Add(time.Second)); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := journal.Save(context.Background(), run); err != nil {
		t.Fatalf("save: %v", err)
	}
	latest, err := journal.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.State != domain.StateConverting || latest.TopicName != "Steuer" {
		t.Fatalf("unexpected journal %+v", latest)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("journal file missing: %v", err)
	}
}

func TestSQLiteHistory(t *testing.T) {
	t.Parallel()
	history, err := exportout.NewSQLiteHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	older := domain.NewRun("a", "all", base)
	older.State, older.TopicName, older.Reason = domain.StateFailed, "Arzt", "nothing to export"
	newer := domain.NewRun("b", "read", base.Add(time.Hour))
	newer.State, newer.TopicName, newer.Succeeded, newer.Pages = domain.StateWriting, "Steuer", 2, 5
	for _, run := range []domain.Run{older, newer} {
		if err := history.Record(ctx, run); err != nil {
			t.Fatalf("record %s: %v", run.ID, err)
		}
	}
	newer.State = domain.StateDone
	newer.UpdatedAt = base.Add(2 * time.Hour)
	if err := history.Record(ctx, newer); err != nil {
		t.Fatalf("update: %v", err)
	}

	runs, err := history.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "b" || runs[0].State != domain.StateDone || runs[0].Pages != 5 {
		t.Fatalf("unexpected history %+v", runs)
	}
	if runs[1].Reason != "nothing to export" || !runs[1].StartedAt.Equal(base) {
		t.Fatalf("unexpected older run %+v", runs[1])
	}
	limited, _ := history.List(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("limit ignored")
	}
}

func TestFileOutputWriterCreatesDirectories(t *testing.T) {
	t.Parallel()
	dest := filepath.Join(t.TempDir(), "a", "b", "out.pdf")
	if err := exportout.NewFileOutputWriter().Write(context.Background(), dest, []byte("%PDF")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil || !bytes.Equal(got, []byte("%PDF")) {
		t.Fatalf("unexpected output %q %v", got, err)
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	if err := exportout.NewFileOutputWriter().Write(context.Background(), filepath.Join(blocker, "out.pdf"), nil); err == nil {
		t.Fatalf("writing below a regular file should fail")
	}
}

type fakeLibrary struct {
	libraryin.Usecase
	topic   librarydto.TopicDetailOutput
	docs    []librarydto.DocumentOutput
	filters []librarydto.ListDocumentsInput
}

func (f *fakeLibrary) GetTopic(_ context.Context, ref string) (librarydto.TopicDetailOutput, error) {
	if ref != "" && ref != f.topic.Name && ref != f.topic.ID {
		return librarydto.TopicDetailOutput{}, apperrors.ErrNotFound
	}
	return f.topic, nil
}

func (f *fakeLibrary) ListDocuments(_ context.Context, in librarydto.ListDocumentsInput) ([]librarydto.DocumentOutput, error) {
	f.filters = append(f.filters, in)
	return f.docs, nil
}

func TestLibraryTopicSourcePlansInTopicOrder(t *testing.T) {
	t.Parallel()
	library := &fakeLibrary{
		topic: librarydto.TopicDetailOutput{ID: "t1", Name: "Steuer"},
		docs: []librarydto.DocumentOutput{
			{Path: "/d/z.pdf", DisplayName: "z.pdf"},
			{Path: "/d/a.pdf", DisplayName: "a.pdf"},
		},
	}
	plan, err := exportout.NewLibraryTopicSource(library).Plan(context.Background(), "Steuer", "UNREAD")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.TopicID != "t1" || plan.Filter != "unread" || len(plan.Items) != 2 || plan.Items[0].Path != "/d/z.pdf" {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if library.filters[0].Topic != "t1" {
		t.Fatalf("documents should be listed by resolved id, got %+v", library.filters[0])
	}
	if _, err := exportout.NewLibraryTopicSource(library).Plan(context.Background(), "Arzt", "all"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
