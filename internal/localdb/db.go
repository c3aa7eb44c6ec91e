// Package localdb is the on-device SQLite database: a key/value metadata
// table used by the preference store.
package localdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/localdb/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// DB owns the SQLite handle and its repositories.
type DB struct {
	db       *sql.DB
	Metadata *MetadataRepository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations with the sqlite3 dialect.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Open opens (creating if needed) the database at dsn and migrates it.
// A single connection is used so ":memory:" databases survive pooling.
func Open(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	return &DB{db: db, Metadata: NewMetadataRepository(db)}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}
