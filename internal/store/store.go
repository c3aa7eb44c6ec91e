// Package store defines the remote data store the sync engine talks to: one
// repository per table plus account-wide housekeeping.
//
// Implementations live in subpackages: postgres (the hosted relational
// database) and memory (standalone mode and tests). Both map a duplicate
// (project, user) membership to common.ErrAlreadyExists and missing rows on
// update/delete to common.ErrNotFound.
package store

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// ProjectRepository covers the projects table. Members are not stored here.
type ProjectRepository interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Project, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Project, error)
	// Insert stores p and returns the server-assigned id; p.ID is ignored.
	Insert(ctx context.Context, p models.Project) (string, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch) error
	Delete(ctx context.Context, id string) error
}

// MemberRepository covers the project_members table.
type MemberRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Membership, error)
	ListByProjects(ctx context.Context, projectIDs []string) ([]models.Membership, error)
	Insert(ctx context.Context, m models.Membership) error
	Delete(ctx context.Context, projectID string, userID int64) error
}

// ProfileRepository covers the profiles table.
type ProfileRepository interface {
	ListByIDs(ctx context.Context, ids []int64) ([]models.Profile, error)
	// Upsert writes name and avatar; the subscription expiry is never touched.
	Upsert(ctx context.Context, p models.Profile) error
}

// ClientRepository covers the clients table.
type ClientRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Client, error)
	Insert(ctx context.Context, c models.Client) (string, error)
	Update(ctx context.Context, id string, patch models.ClientPatch) error
	Delete(ctx context.Context, id string) error
}

// TaskRepository covers the tasks table.
type TaskRepository interface {
	// ListForUser returns tasks owned by userID or attached to any of
	// projectIDs.
	ListForUser(ctx context.Context, userID int64, projectIDs []string) ([]models.TaskRow, error)
	Insert(ctx context.Context, t models.Task) (string, error)
	Update(ctx context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
}

// Store vends the repositories.
type Store interface {
	Projects() ProjectRepository
	Members() MemberRepository
	Profiles() ProfileRepository
	Clients() ClientRepository
	Tasks() TaskRepository

	// DeleteUserData removes everything the user owns: tasks, clients,
	// owned projects with their memberships, own memberships and profile.
	DeleteUserData(ctx context.Context, userID int64) error

	Close() error
}
