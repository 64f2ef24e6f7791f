// Package storage persists the client session in a SQLite key/value table.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Keys of the persisted session pair.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Storage is a SQLite-backed key/value store.
type Storage struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and applies migrations.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dsn, err)
	}
	// one connection, so ":memory:" is a single database and writes never contend
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	dir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, dir)
	if err != nil {
		return fmt.Errorf("storage: goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Get returns the value of key, or nil when it is absent.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return value, nil
}

// Load returns the persisted session pair. Missing entries come back empty.
func (s *Storage) Load(ctx context.Context) (user []byte, token string, err error) {
	if user, err = s.Get(ctx, KeyUser); err != nil {
		return nil, "", err
	}

	raw, err := s.Get(ctx, KeyToken)
	if err != nil {
		return nil, "", err
	}

	return user, string(raw), nil
}

// Save writes both entries of the session pair in one transaction.
func (s *Storage) Save(ctx context.Context, user []byte, token string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		const q = `INSERT INTO kv (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`

		if _, err := tx.ExecContext(ctx, q, KeyUser, user); err != nil {
			return fmt.Errorf("storage: set %s: %w", KeyUser, err)
		}
		if _, err := tx.ExecContext(ctx, q, KeyToken, []byte(token)); err != nil {
			return fmt.Errorf("storage: set %s: %w", KeyToken, err)
		}
		return nil
	})
}

// Clear removes both entries of the session pair in one transaction.
func (s *Storage) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key IN (?, ?)`, KeyUser, KeyToken); err != nil {
			return fmt.Errorf("storage: clear: %w", err)
		}
		return nil
	})
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
