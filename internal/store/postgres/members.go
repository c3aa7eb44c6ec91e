package postgres

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// MemberRepository implements store.MemberRepository over a dbx.DBTX.
type MemberRepository struct {
	db dbx.DBTX
}

// NewMemberRepository constructs a repository bound to the given DBTX.
func NewMemberRepository(db dbx.DBTX) *MemberRepository {
	return &MemberRepository{db: db}
}

func scanMembership(s dbx.Scanner) (models.Membership, error) {
	var (
		m    models.Membership
		role string
	)
	if err := s.Scan(&m.ProjectID, &m.UserID, &role); err != nil {
		return models.Membership{}, err
	}
	m.Role = models.Role(role)
	return m, nil
}

// ListByUser returns the memberships of userID.
func (r *MemberRepository) ListByUser(ctx context.Context, userID int64) ([]models.Membership, error) {
	query := `SELECT project_id, user_id, role FROM project_members WHERE user_id = $1 ORDER BY joined_at`
	result, err := dbx.QueryAll(ctx, r.db, scanMembership, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select memberships: %w", err)
	}
	return result, nil
}

// ListByProjects returns every membership of the given projects.
func (r *MemberRepository) ListByProjects(ctx context.Context, projectIDs []string) ([]models.Membership, error) {
	if len(projectIDs) == 0 {
		return []models.Membership{}, nil
	}
	query := `SELECT project_id, user_id, role FROM project_members WHERE project_id = ANY($1) ORDER BY joined_at`
	result, err := dbx.QueryAll(ctx, r.db, scanMembership, query, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to select memberships: %w", err)
	}
	return result, nil
}

// Insert adds a membership. A duplicate (project, user) pair yields
// common.ErrAlreadyExists and an unknown project common.ErrNotFound.
func (r *MemberRepository) Insert(ctx context.Context, m models.Membership) error {
	query := `INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, m.ProjectID, m.UserID, string(m.Role)); err != nil {
		return mapError(err)
	}
	return nil
}

// Delete removes the membership of userID in projectID.
func (r *MemberRepository) Delete(ctx context.Context, projectID string, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return mapError(err)
	}
	return dbx.ExpectAffected(res)
}
