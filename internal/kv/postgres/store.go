package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps each document as a row in the documents table. The
// version column is the optimistic concurrency token: conditional
// writes only touch rows whose version still matches.
type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) (kv.Document, error) {
	query := `
		SELECT data, version
		FROM documents
		WHERE key = $1
	`

	var doc kv.Document
	err := s.db.QueryRow(ctx, query, key).Scan(&doc.Data, &doc.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return kv.Document{}, kv.ErrNotFound
	}
	if err != nil {
		return kv.Document{}, fmt.Errorf("get %s: %w", key, err)
	}

	return doc, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO documents (key, data, version)
		VALUES ($1, $2, 1)
		ON CONFLICT (key)
		DO UPDATE SET data = EXCLUDED.data, version = documents.version + 1, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) PutVersion(ctx context.Context, key string, data []byte, expected int64) error {
	if expected == 0 {
		query := `
			INSERT INTO documents (key, data, version)
			VALUES ($1, $2, 1)
			ON CONFLICT (key) DO NOTHING
		`
		tag, err := s.db.Exec(ctx, query, key, data)
		if err != nil {
			return fmt.Errorf("put %s (version 0): %w", key, err)
		}
		if tag.RowsAffected() == 0 {
			return kv.ErrConflict
		}
		return nil
	}

	query := `
		UPDATE documents
		SET data = $2, version = version + 1, updated_at = NOW()
		WHERE key = $1 AND version = $3
	`
	tag, err := s.db.Exec(ctx, query, key, data, expected)
	if err != nil {
		return fmt.Errorf("put %s (version %d): %w", key, expected, err)
	}
	if tag.RowsAffected() == 0 {
		return kv.ErrConflict
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM documents WHERE key = $1
		)
	`

	var exists bool
	if err := s.db.QueryRow(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return exists, nil
}
