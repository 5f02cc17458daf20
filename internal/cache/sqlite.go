package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS request_cache (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	stored_at  INTEGER NOT NULL,
	expires_at INTEGER
)`

// SQLite is a file-backed cache.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSQLite opens or creates the cache database at path. Parent
// directories are created as needed. ttl <= 0 keeps entries forever.
func OpenSQLite(ctx context.Context, path string, ttl time.Duration) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}
	// one writer at a time; the CLI never needs more
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &SQLite{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expires sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM request_cache WHERE key = ?`, key).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if expires.Valid && s.now().Unix() >= expires.Int64 {
		return nil, false, s.Delete(ctx, key)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	now := s.now()
	var expires sql.NullInt64
	if s.ttl > 0 {
		expires = sql.NullInt64{Int64: now.Add(s.ttl).Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_cache (key, value, stored_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		   stored_at = excluded.stored_at, expires_at = excluded.expires_at`,
		key, value, now.Unix(), expires)
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM request_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM request_cache`); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
