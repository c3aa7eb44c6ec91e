package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
)

// MetadataRepository stores opaque values by key.
type MetadataRepository struct {
	db dbx.DBTX
}

func NewMetadataRepository(db dbx.DBTX) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// Get returns the value of key, or (nil, nil) when it is not set.
func (r *MetadataRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *MetadataRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *MetadataRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

// List returns every stored pair.
func (r *MetadataRepository) List(ctx context.Context) (map[string][]byte, error) {
	type pair struct {
		key   string
		value []byte
	}
	pairs, err := dbx.QueryAll(ctx, r.db, func(s dbx.Scanner) (pair, error) {
		var p pair
		err := s.Scan(&p.key, &p.value)
		return p, err
	}, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	result := make(map[string][]byte, len(pairs))
	for _, p := range pairs {
		result[p.key] = p.value
	}
	return result, nil
}

// Clear removes every key.
func (r *MetadataRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}
