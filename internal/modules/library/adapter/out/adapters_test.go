package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	libraryout "dokureader/internal/modules/library/adapter/out"
	"dokureader/internal/modules/library/domain"
)

func TestFileStateStoreRoundTripAndMissingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := libraryout.NewFileStateStore(path)

	empty, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if empty.SchemaVersion != domain.SchemaVersion || len(empty.Topics) != 0 {
		t.Fatalf("unexpected empty state %+v", empty)
	}

	state := domain.State{
		SchemaVersion:  domain.SchemaVersion,
		CurrentTopicID: "t1",
		Topics: []domain.Topic{{
			ID:   "t1",
			Name: "Steuer",
			Documents: []domain.Document{
				{Path: "/d/b.pdf", DisplayName: "b.pdf", TopicID: "t1", Read: true, AddedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
				{Path: "/d/a.pdf", DisplayName: "a.pdf", TopicID: "t1"},
			},
		}},
	}
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	docs := loaded.Topics[0].Documents
	if loaded.CurrentTopicID != "t1" || docs[0].Path != "/d/b.pdf" || !docs[0].Read || !docs[0].AddedAt.Equal(state.Topics[0].Documents[0].AddedAt) {
		t.Fatalf("unexpected round trip %+v", loaded)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestFileStateStoreRejectsCorruptAndNewer(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cases := map[string]string{
		"corrupt.json": "{not json",
		"newer.json":   `{"schema_version": 99, "topics": []}`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := libraryout.NewFileStateStore(path).Load(context.Background()); err == nil {
			t.Fatalf("%s should fail to load", name)
		}
	}
}

func TestLegacyStateFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), libraryout.LegacyFileName)
	body := `{"topics": {"Steuer": [{"path": "/d/a.pdf", "read": true}]}, "current_topic": "Steuer"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	state, err := libraryout.NewLegacyStateFile().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(state.Topics["Steuer"]) != 1 || !state.Topics["Steuer"][0].Read || state.CurrentTopic == nil || *state.CurrentTopic != "Steuer" {
		t.Fatalf("unexpected legacy state %+v", state)
	}
	if _, err := libraryout.NewLegacyStateFile().Read(context.Background(), path+".missing"); err == nil {
		t.Fatalf("missing legacy file should fail")
	}
}

func TestSQLiteDocumentIndexSearch(t *testing.T) {
	t.Parallel()
	index, err := libraryout.NewSQLiteDocumentIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	ctx := context.Background()
	topics := []domain.Topic{
		{ID: "t2", Name: "steuer", Documents: []domain.Document{
			{Path: "/d/Rechnung_2024.pdf", DisplayName: "Rechnung_2024.pdf", Read: true},
			{Path: "/d/rechnung 100%.txt", DisplayName: "rechnung 100%.txt"},
		}},
		{ID: "t1", Name: "Arzt", Documents: []domain.Document{
			{Path: "/praxis/rechnung.pdf", DisplayName: "rechnung.pdf"},
		}},
	}
	if err := index.Rebuild(ctx, topics); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	hits, err := index.Search(ctx, "RECHNUNG", 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 3 || hits[0].TopicName != "Arzt" || hits[1].Path != "/d/Rechnung_2024.pdf" || !hits[1].Read {
		t.Fatalf("unexpected hits %+v", hits)
	}

	literal, err := index.Search(ctx, "100%", 50)
	if err != nil || len(literal) != 1 || !strings.HasSuffix(literal[0].Path, "100%.txt") {
		t.Fatalf("wildcards must match literally: %+v %v", literal, err)
	}
	underscore, _ := index.Search(ctx, "g_", 50)
	if len(underscore) != 1 {
		t.Fatalf("underscore must match literally: %+v", underscore)
	}
	limited, _ := index.Search(ctx, "rechnung", 1)
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %+v", limited)
	}

	topics[0].Documents = topics[0].Documents[:1]
	if err := index.Rebuild(ctx, topics); err != nil {
		t.Fatalf("rebuild again: %v", err)
	}
	if hits, _ := index.Search(ctx, "100%", 50); len(hits) != 0 {
		t.Fatalf("removed document still indexed: %+v", hits)
	}
	if err := index.Rebuild(ctx, nil); err != nil {
		t.Fatalf("rebuild empty: %v", err)
	}
	if hits, _ := index.Search(ctx, "rechnung", 50); len(hits) != 0 {
		t.Fatalf("empty rebuild left hits: %+v", hits)
	}
}

func TestSQLiteDocumentIndexFailedRebuildKeepsPreviousContent(t *testing.T) {
	t.Parallel()
	index, err := libraryout.NewSQLiteDocumentIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	ctx := context.Background()
	first := []domain.Topic{{ID: "t1", Name: "Arzt", Documents: []domain.Document{{Path: "/praxis/befund.pdf", DisplayName: "befund.pdf"}}}}
	if err := index.Rebuild(ctx, first); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	// The same topic id twice violates the primary key halfway through.
	broken := []domain.Topic{{ID: "t9", Name: "Neu"}, {ID: "t9", Name: "Doppelt"}}
	if err := index.Rebuild(ctx, broken); err == nil {
		t.Fatalf("duplicate topic ids should fail the rebuild")
	}
	hits, err := index.Search(ctx, "befund", 50)
	if err != nil || len(hits) != 1 || hits[0].TopicName != "Arzt" {
		t.Fatalf("failed rebuild must leave the old index intact: %+v %v", hits, err)
	}
}
