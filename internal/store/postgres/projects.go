package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

const projectColumns = `id, user_id, title, description, status, deadline, cost, created_at`

// ProjectRepository implements store.ProjectRepository over a dbx.DBTX.
type ProjectRepository struct {
	db dbx.DBTX
}

// NewProjectRepository constructs a repository bound to the given DBTX.
func NewProjectRepository(db dbx.DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(s dbx.Scanner) (models.Project, error) {
	var (
		p        models.Project
		status   string
		deadline sql.NullString
		cost     sql.NullFloat64
	)
	if err := s.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &status, &deadline, &cost, &p.CreatedAt); err != nil {
		return models.Project{}, err
	}
	p.Status = models.Status(status)
	p.Deadline = stringPtr(deadline)
	p.Cost = floatPtr(cost)
	return p, nil
}

// ListByOwner returns projects created by ownerID, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1 ORDER BY created_at DESC`
	result, err := dbx.QueryAll(ctx, r.db, scanProject, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	return result, nil
}

// ListByIDs returns the projects whose id is in ids.
func (r *ProjectRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ANY($1) ORDER BY created_at DESC`
	result, err := dbx.QueryAll(ctx, r.db, scanProject, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	return result, nil
}

// Insert stores p and returns the generated id.
func (r *ProjectRepository) Insert(ctx context.Context, p models.Project) (string, error) {
	query := `
		INSERT INTO projects (user_id, title, description, status, deadline, cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		p.OwnerID, p.Title, p.Description, string(p.Status), nullString(p.Deadline), nullFloat(p.Cost), p.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

// Update writes the set fields of patch. An empty patch is a no-op.
func (r *ProjectRepository) Update(ctx context.Context, id string, patch models.ProjectPatch) error {
	var b setBuilder
	if patch.Title != nil {
		b.set("title", *patch.Title)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}
	if patch.Status != nil {
		b.set("status", string(*patch.Status))
	}
	b.optional("deadline", patch.Deadline, patch.ClearDeadline)
	switch {
	case patch.ClearCost:
		b.set("cost", nil)
	case patch.Cost != nil:
		b.set("cost", *patch.Cost)
	}
	if b.empty() {
		return nil
	}

	query, args := b.update("projects", id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	return dbx.ExpectAffected(res)
}

// Delete removes the project row; its memberships cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return dbx.ExpectAffected(res)
}
