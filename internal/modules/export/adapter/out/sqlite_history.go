package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dokureader/internal/modules/export/domain"
	exportout "dokureader/internal/modules/export/port/out"
	"dokureader/internal/platform/sqlitedb"
)

const historyDDL = `
CREATE TABLE IF NOT EXISTS export_runs (
  id TEXT PRIMARY KEY,
  topic_id TEXT NOT NULL,
  topic_name TEXT NOT NULL,
  filter TEXT NOT NULL,
  state TEXT NOT NULL,
  output_path TEXT NOT NULL,
  documents INTEGER NOT NULL,
  succeeded INTEGER NOT NULL,
  skipped INTEGER NOT NULL,
  pages INTEGER NOT NULL,
  reason TEXT NOT NULL,
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_export_runs_started ON export_runs(started_at);
`

type SQLiteHistory struct {
	db *sql.DB
}

func NewSQLiteHistory(dbPath string) (exportout.History, error) {
	db, err := sqlitedb.Open(context.Background(), dbPath, historyDDL)
	if err != nil {
		return nil, fmt.Errorf("open export history: %w", err)
	}
	return &SQLiteHistory{db: db}, nil
}

func (h *SQLiteHistory) Record(ctx context.Context, run domain.Run) error {
	const stmt = `
INSERT INTO export_runs (id, topic_id, topic_name, filter, state, output_path, documents, succeeded, skipped, pages, reason, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  state=excluded.state,
  output_path=excluded.output_path,
  succeeded=excluded.succeeded,
  skipped=excluded.skipped,
  pages=excluded.pages,
  reason=excluded.reason,
  finished_at=excluded.finished_at;
`
	_, err := h.db.ExecContext(ctx, stmt,
		run.ID, run.TopicID, run.TopicName, run.Filter, string(run.State), run.OutputPath,
		run.Documents, run.Succeeded, run.Skipped, run.Pages, run.Reason,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record export run: %w", err)
	}
	return nil
}

// List returns the most recent runs first.
func (h *SQLiteHistory) List(ctx context.Context, limit int) ([]domain.Run, error) {
	const stmt = `
SELECT id, topic_id, topic_name, filter, state, output_path, documents, succeeded, skipped, pages, reason, started_at, finished_at
FROM export_runs
ORDER BY started_at DESC, id DESC
LIMIT ?;
`
	rows, err := h.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("query export history: %w", err)
	}
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		var (
			run              domain.Run
			state            string
			started, updated string
		)
		if err := rows.Scan(&run.ID, &run.TopicID, &run.TopicName, &run.Filter, &state, &run.OutputPath,
			&run.Documents, &run.Succeeded, &run.Skipped, &run.Pages, &run.Reason, &started, &updated); err != nil {
			return nil, fmt.Errorf("scan export run: %w", err)
		}
		run.SchemaVersion = domain.SchemaVersion
		run.State = domain.State(state)
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at of %s: %w", run.ID, err)
		}
		if run.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("parse finished_at of %s: %w", run.ID, err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export history: %w", err)
	}
	return out, nil
}
