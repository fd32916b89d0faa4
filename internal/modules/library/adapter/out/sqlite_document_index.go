package out

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dokureader/internal/modules/library/domain"
	libraryout "dokureader/internal/modules/library/port/out"
	"dokureader/internal/platform/sqlitedb"
)

const documentIndexDDL = `
CREATE TABLE IF NOT EXISTS topics (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
  topic_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  path TEXT NOT NULL,
  display_name TEXT NOT NULL,
  read INTEGER NOT NULL,
  PRIMARY KEY (topic_id, path)
);
`

type SQLiteDocumentIndex struct {
	db *sql.DB
}

func NewSQLiteDocumentIndex(dbPath string) (libraryout.DocumentIndex, error) {
	db, err := sqlitedb.Open(context.Background(), dbPath, documentIndexDDL)
	if err != nil {
		return nil, fmt.Errorf("open document index: %w", err)
	}
	return &SQLiteDocumentIndex{db: db}, nil
}

// Rebuild swaps the index content in one transaction, so searches never see
// a partially rebuilt index.
func (s *SQLiteDocumentIndex) Rebuild(ctx context.Context, topics []domain.Topic) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM topics`); err != nil {
		return fmt.Errorf("clear topics: %w", err)
	}
	for _, topic := range topics {
		if _, err := tx.ExecContext(ctx, `INSERT INTO topics (id, name) VALUES (?, ?)`, topic.ID, topic.Name); err != nil {
			return fmt.Errorf("insert topic %s: %w", topic.Name, err)
		}
		for i, doc := range topic.Documents {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO documents (topic_id, position, path, display_name, read) VALUES (?, ?, ?, ?, ?)`,
				topic.ID, i, doc.Path, doc.DisplayName, boolToInt(doc.Read),
			)
			if err != nil {
				return fmt.Errorf("insert document %s: %w", doc.Path, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index tx: %w", err)
	}
	return nil
}

func (s *SQLiteDocumentIndex) Search(ctx context.Context, query string, limit int) ([]domain.DocumentHit, error) {
	const stmt = `
SELECT d.topic_id, t.name, d.path, d.display_name, d.read
FROM documents d
JOIN topics t ON t.id = d.topic_id
WHERE lower(d.display_name) LIKE ? ESCAPE '\' OR lower(d.path) LIKE ? ESCAPE '\'
ORDER BY lower(t.name), d.position
LIMIT ?;
`
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := s.db.QueryContext(ctx, stmt, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var out []domain.DocumentHit
	for rows.Next() {
		var (
			hit  domain.DocumentHit
			read int
		)
		if err := rows.Scan(&hit.TopicID, &hit.TopicName, &hit.Path, &hit.DisplayName, &read); err != nil {
			return nil, fmt.Errorf("scan document hit: %w", err)
		}
		hit.Read = read != 0
		out = append(out, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document hits: %w", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
