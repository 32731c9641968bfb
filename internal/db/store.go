package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv (
		scope TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updatedAt REAL NOT NULL,
		PRIMARY KEY (scope, key)
	);
`

// Store is a keyed JSON store with a local and a sync scope.
type Store struct {
	db *sql.DB

	// mu serializes read-modify-write updates of map and list values.
	mu sync.Mutex

	idMu   sync.Mutex
	lastID int64
}

// DefaultDBPath returns the default database path under MEETMIND_HOME or
// ~/.meetmind.
func DefaultDBPath() string {
	dir := os.Getenv("MEETMIND_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".meetmind")
	}
	return filepath.Join(dir, "meetmind.sqlite")
}

// Open opens (creating if needed) the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.configure(path); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) configure(path string) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw JSON values stored under keys. Missing keys are absent
// from the result.
func (s *Store) Get(scope Scope, keys ...string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, 0, len(keys)+1)
	args = append(args, string(scope))
	for _, k := range keys {
		args = append(args, k)
	}

	rows, err := s.db.Query(`
		SELECT key, value FROM kv
		WHERE scope = ? AND key IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		out[key] = json.RawMessage(value)
	}
	return out, rows.Err()
}

// GetAll returns every value in scope.
func (s *Store) GetAll(scope Scope) (map[string]json.RawMessage, error) {
	rows, err := s.db.Query(`SELECT key, value FROM kv WHERE scope = ?`, string(scope))
	if err != nil {
		return nil, fmt.Errorf("query scope: %w", err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		out[key] = json.RawMessage(value)
	}
	return out, rows.Err()
}

// Set stores every entry of values as JSON in one transaction.
func (s *Store) Set(scope Scope, values map[string]any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := unixFromTime(time.Now())
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO kv (scope, key, value, updatedAt) VALUES (?, ?, ?, ?)
			ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updatedAt = excluded.updatedAt
		`, string(scope), key, string(data), now); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Delete removes keys from scope.
func (s *Store) Delete(scope Scope, keys ...string) error {
	for _, k := range keys {
		if _, err := s.db.Exec(`DELETE FROM kv WHERE scope = ? AND key = ?`, string(scope), k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

// getJSON decodes the value under key into v. It reports false when the key is missing.
func (s *Store) getJSON(scope Scope, key string, v any) (bool, error) {
	vals, err := s.Get(scope, key)
	if err != nil {
		return false, err
	}
	raw, ok := vals[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
