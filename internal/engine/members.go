package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// InviteToken returns the shareable join token of a project.
func InviteToken(projectID string) string {
	return common.InvitePrefix + projectID
}

// ParseInvite extracts the project id from an invite token.
func ParseInvite(token string) (string, error) {
	id, ok := strings.CutPrefix(strings.TrimSpace(token), common.InvitePrefix)
	if !ok || id == "" {
		return "", ErrInvalidInvite
	}
	return id, nil
}

// InviteToken returns the invite token of an accessible project.
func (e *Engine) InviteToken(projectID string) (string, error) {
	if _, ok := e.Project(projectID); !ok {
		return "", ErrNotFound
	}
	if models.IsTempID(projectID) {
		return "", fmt.Errorf("project %s is not saved yet: %w", projectID, ErrNotFound)
	}
	return InviteToken(projectID), nil
}

// JoinByInvite adds the current user as a member of the invited project and
// reloads the state. Joining an already accessible project, or losing a race
// against another join, counts as success.
func (e *Engine) JoinByInvite(ctx context.Context, token string) (string, error) {
	projectID, err := ParseInvite(token)
	if err != nil {
		return "", err
	}
	if _, ok := e.Project(projectID); ok {
		return projectID, nil
	}
	if e.resolver.Guest() {
		return "", ErrGuest
	}

	log := e.logger.With("op", "join", "project_id", projectID)
	err = e.store.Members().Insert(ctx, models.Membership{
		ProjectID: projectID,
		UserID:    e.UserID(),
		Role:      models.RoleMember,
	})
	switch {
	case errors.Is(err, common.ErrAlreadyExists):
		log.Info(ctx, "already a member")
	case errors.Is(err, common.ErrNotFound):
		return "", ErrInvalidInvite
	case err != nil:
		log.Error(ctx, "membership insert failed", "err", err)
		return "", fmt.Errorf("join project: %w", err)
	}

	if err := e.Load(ctx); err != nil {
		log.Warn(ctx, "reload after join was partial", "err", err)
	}
	return projectID, nil
}

// RemoveMember strips a member from a project locally, then deletes the
// membership remotely. The owner cannot be removed.
func (e *Engine) RemoveMember(ctx context.Context, projectID string, userID int64) error {
	e.mu.Lock()
	i := e.projectIndex(projectID)
	if i < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	p := &e.state.Projects[i]
	if userID == p.OwnerID {
		e.mu.Unlock()
		return ErrNotOwner
	}
	p.Members = slices.DeleteFunc(p.Members, func(m models.Member) bool { return m.UserID == userID })
	e.mu.Unlock()

	if err := e.store.Members().Delete(ctx, projectID, userID); err != nil {
		e.logger.Error(ctx, "remote member delete failed", "op", "remove_member", "id", projectID, "user_id", userID, "err", err)
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// LeaveProject drops the current user's membership. The project and its
// tasks disappear from the local state at once.
func (e *Engine) LeaveProject(ctx context.Context, projectID string) error {
	uid := e.UserID()

	e.mu.Lock()
	i := e.projectIndex(projectID)
	if i < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	if e.state.Projects[i].OwnerID == uid {
		e.mu.Unlock()
		return ErrNotOwner
	}
	e.state.Projects = slices.Delete(e.state.Projects, i, i+1)
	e.state.Tasks = slices.DeleteFunc(e.state.Tasks, func(t models.Task) bool { return t.InProject(projectID) })
	e.mu.Unlock()

	if err := e.store.Members().Delete(ctx, projectID, uid); err != nil {
		e.logger.Error(ctx, "remote member delete failed", "op", "leave_project", "id", projectID, "err", err)
		return fmt.Errorf("leave project: %w", err)
	}
	return nil
}

// DeleteAccount removes all remote data of the current user and resets the
// session. The state is kept when the remote deletion fails.
func (e *Engine) DeleteAccount(ctx context.Context) error {
	uid := e.UserID()
	if err := e.store.DeleteUserData(ctx, uid); err != nil {
		e.logger.Error(ctx, "account deletion failed", "op", "delete_account", "user_id", uid, "err", err)
		return fmt.Errorf("delete account: %w", err)
	}
	e.Reset()
	e.logger.Info(ctx, "account deleted", "op", "delete_account", "user_id", uid)
	return nil
}
