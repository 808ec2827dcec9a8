package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

// SQLiteStore mirrors merged records into a SQLite table keyed by id. Each
// upsert moves the record to the end of the listing order, as Merge does.
type SQLiteStore struct {
	Pool *sql.DB
}

// OpenSQLite opens (or creates) the database at path and migrates it
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, utils.NewPersistenceError("failed to create database directory", err)
		}
	}

	pool, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, utils.NewPersistenceError("failed to open database", err)
	}

	// sqlite wants a single writer
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, utils.NewPersistenceError("failed to reach database", err)
	}

	s := &SQLiteStore{Pool: pool}
	if err := s.migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return utils.NewPersistenceError("failed to begin migration", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return utils.NewPersistenceError("failed to read schema version", err)
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS records (
  id TEXT PRIMARY KEY,
  seq INTEGER NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  company_name TEXT NOT NULL DEFAULT '',
  job_url TEXT NOT NULL DEFAULT '',
  published_at TEXT NOT NULL DEFAULT '',
  body TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`); err != nil {
		return utils.NewPersistenceError("failed to create records table", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_records_seq ON records(seq);`); err != nil {
		return utils.NewPersistenceError("failed to create records index", err)
	}
	if _, err := tx.ExecContext(ctx, `PRAGMA user_version = 1;`); err != nil {
		return utils.NewPersistenceError("failed to set schema version", err)
	}

	return tx.Commit()
}

// Upsert stores record, replacing any row with the same id
func (s *SQLiteStore) Upsert(ctx context.Context, record models.Record) error {
	body, err := json.Marshal(record)
	if err != nil {
		return utils.NewPersistenceError("failed to encode record", err)
	}

	_, err = s.Pool.ExecContext(ctx, `
INSERT INTO records (id, seq, title, company_name, job_url, published_at, body, updated_at)
VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records), ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  seq = (SELECT COALESCE(MAX(seq), 0) + 1 FROM records),
  title = excluded.title,
  company_name = excluded.company_name,
  job_url = excluded.job_url,
  published_at = excluded.published_at,
  body = excluded.body,
  updated_at = excluded.updated_at;`,
		record.ID, record.Title, record.CompanyName, record.JobURL, record.PublishedAt,
		string(body), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return utils.NewPersistenceError("failed to upsert record", err)
	}
	return nil
}

// List returns all mirrored records in merge order
func (s *SQLiteStore) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.Pool.QueryContext(ctx, `SELECT body FROM records ORDER BY seq ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var r models.Record
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.Pool == nil {
		return nil
	}
	return s.Pool.Close()
}

// sqliteDSN builds a file: URI for path, e.g. file:foo.db?_pragma=busy_timeout(5000).
// The path is percent-encoded so '?' and '#' in it are not read as the query.
func sqliteDSN(path string) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return "file:" + escaped + "?_pragma=busy_timeout(5000)"
}
