package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"subfetch/internal/subtitle"
)

// Record is one journal row: a single materialization attempt.
type Record struct {
	ID        int64
	RunID     string
	Source    string
	Language  string
	Output    string
	Score     float64
	Status    string
	Detail    string
	CreatedAt time.Time
}

// Store manages the download journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database. Schema setup is
// serialized through a sidecar file lock so concurrent subfetch invocations
// cannot race the DDL; normal inserts rely on SQLite's own locking.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	lock := flock.New(dbPath + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the journal database location.
func (s *Store) Path() string {
	return s.path
}

const schema = `
CREATE TABLE IF NOT EXISTS download_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    source_path TEXT NOT NULL,
    language TEXT NOT NULL DEFAULT '',
    output_path TEXT NOT NULL DEFAULT '',
    score REAL NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_download_history_created
    ON download_history(created_at);
`

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply journal schema: %w", err)
	}
	return nil
}

// Append records one attempt. Implements subtitle.Journal.
func (s *Store) Append(ctx context.Context, attempt subtitle.Attempt) error {
	when := attempt.When
	if when.IsZero() {
		when = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO download_history (
            run_id, source_path, language, output_path, score, status, detail, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.RunID,
		attempt.Source,
		attempt.Lang,
		attempt.Output,
		attempt.Score,
		attempt.Status,
		attempt.Detail,
		when.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert journal row: %w", err)
	}
	return nil
}

// Recent returns the newest rows, most recent first. With onlyFailed set,
// downloaded and no-match rows are filtered out.
func (s *Store) Recent(ctx context.Context, limit int, onlyFailed bool) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, run_id, source_path, language, output_path, score, status, detail, created_at
        FROM download_history`
	args := make([]any, 0, 2)
	if onlyFailed {
		query += ` WHERE status = ?`
		args = append(args, subtitle.StatusFailed)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Source, &rec.Language, &rec.Output,
			&rec.Score, &rec.Status, &rec.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			rec.CreatedAt = parsed
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return records, nil
}
