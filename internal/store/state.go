package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// modernc.org/sqlite driver name is "sqlite".
	_ "modernc.org/sqlite"
)

const stateFileName = "state.sqlite"

const keyLastNamespace = "last_namespace"

// State keeps the few values the settings UI remembers between runs
// (what a browser would keep in localStorage).
//
// A State with an empty Dir keeps values in memory only.
type State struct {
	Dir string

	mu  sync.Mutex
	mem map[string]string
}

func (s *State) path() string {
	return filepath.Join(s.Dir, stateFileName)
}

func (s *State) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", s.path())
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Get returns the stored value for key, or "" if missing.
func (s *State) Get(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(s.Dir) == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.mem[key], nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Set stores value under key.
func (s *State) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(s.Dir) == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.mem == nil {
			s.mem = map[string]string{}
		}
		s.mem[key] = value
		return nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`,
		key, value, time.Now().UTC().UnixMilli())
	return err
}

// LastNamespace is the script namespace that was open last time.
func (s *State) LastNamespace(ctx context.Context) (string, error) {
	return s.Get(ctx, keyLastNamespace)
}

func (s *State) SetLastNamespace(ctx context.Context, ns string) error {
	return s.Set(ctx, keyLastNamespace, ns)
}
