// Package postgres implements store.Store on top of PostgreSQL using the pgx
// database/sql driver. The schema is applied with goose from the embedded
// store/migrations files.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/store"
	"github.com/dmitrijs2005/taskkeeper/internal/store/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Store vends PostgreSQL-backed repositories sharing one connection pool.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Open connects to dsn, verifies the connection and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return New(db), nil
}

// New wraps an already opened database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Projects returns the projects repository.
func (s *Store) Projects() store.ProjectRepository { return NewProjectRepository(s.db) }

// Members returns the project_members repository.
func (s *Store) Members() store.MemberRepository { return NewMemberRepository(s.db) }

// Profiles returns the profiles repository.
func (s *Store) Profiles() store.ProfileRepository { return NewProfileRepository(s.db) }

// Clients returns the clients repository.
func (s *Store) Clients() store.ClientRepository { return NewClientRepository(s.db) }

// Tasks returns the tasks repository.
func (s *Store) Tasks() store.TaskRepository { return NewTaskRepository(s.db) }

// DeleteUserData removes all rows belonging to userID in one transaction.
// Tasks and memberships of owned projects go too, even when other users
// created them.
func (s *Store) DeleteUserData(ctx context.Context, userID int64) error {
	stmts := []string{
		`DELETE FROM tasks WHERE user_id = $1 OR project_id IN (SELECT id FROM projects WHERE user_id = $1)`,
		`DELETE FROM project_members WHERE user_id = $1 OR project_id IN (SELECT id FROM projects WHERE user_id = $1)`,
		`DELETE FROM projects WHERE user_id = $1`,
		`DELETE FROM clients WHERE user_id = $1`,
		`DELETE FROM profiles WHERE id = $1`,
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q, userID); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
