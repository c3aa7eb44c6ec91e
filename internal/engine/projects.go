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

// CreateProject adds a project owned by the current user. The returned
// project carries the server id on success, or the temporary id when the
// remote insert failed.
func (e *Engine) CreateProject(ctx context.Context, draft models.ProjectDraft) (models.Project, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return models.Project{}, ErrEmptyTitle
	}
	if draft.Status == "" {
		draft.Status = models.StatusInProgress
	}
	if !models.ProjectStatusValid(draft.Status) {
		return models.Project{}, ErrInvalidStatus
	}

	uid := e.UserID()
	p := models.Project{
		ID:          e.tempID(),
		OwnerID:     uid,
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Status:      draft.Status,
		CreatedAt:   e.now(),
		Deadline:    draft.Deadline,
		Cost:        draft.Cost,
		Members:     []models.Member{e.member(uid, models.RoleOwner)},
	}
	p = p.Clone()

	e.mu.Lock()
	e.state.Projects = append([]models.Project{p}, e.state.Projects...)
	e.mu.Unlock()

	log := e.logger.With("op", "create_project", "temp_id", p.ID)
	id, err := e.store.Projects().Insert(ctx, p)
	if err != nil {
		log.Error(ctx, "remote insert failed", "err", err)
		return p.Clone(), fmt.Errorf("create project: %w", err)
	}

	if !e.resolver.Guest() {
		err := e.store.Members().Insert(ctx, models.Membership{ProjectID: id, UserID: uid, Role: models.RoleOwner})
		if err != nil && !errors.Is(err, common.ErrAlreadyExists) {
			log.Warn(ctx, "owner membership insert failed", "id", id, "err", err)
		}
	}

	moved := e.reconcileProject(p.ID, id)
	e.relinkTasks(ctx, moved, id)
	log.Debug(ctx, "project confirmed", "id", id)

	if out, ok := e.Project(id); ok {
		// Changes made while the insert was in flight.
		if patch := models.ProjectChanges(p, out); !patch.Empty() {
			if err := e.store.Projects().Update(ctx, id, patch); err != nil {
				log.Error(ctx, "pending changes not saved", "id", id, "err", err)
				return out, fmt.Errorf("create project: %w", err)
			}
		}
		return out, nil
	}
	// Deleted locally while the insert was in flight.
	if err := e.store.Projects().Delete(ctx, id); err != nil {
		log.Warn(ctx, "orphan cleanup failed", "id", id, "err", err)
	}
	return models.Project{}, ErrNotFound
}

// reconcileProject swaps a temporary project id for the server one, in the
// project itself and in every task referencing it. It returns the ids of
// already durable tasks whose remote row still points at the temporary id.
func (e *Engine) reconcileProject(tempID, id string) []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.projectIndex(tempID); i >= 0 {
		e.state.Projects[i].ID = id
	}
	var durable []models.Task
	for i := range e.state.Tasks {
		t := &e.state.Tasks[i]
		if !t.InProject(tempID) {
			continue
		}
		pid := id
		t.ProjectID = &pid
		if !models.IsTempID(t.ID) {
			durable = append(durable, t.Clone())
		}
	}
	return durable
}

// relinkTasks points remote task rows at the confirmed project id. The
// rows keep their UpdatedAt so completed tasks do not resurface.
func (e *Engine) relinkTasks(ctx context.Context, tasks []models.Task, projectID string) {
	for _, t := range tasks {
		pid := projectID
		if err := e.store.Tasks().Update(ctx, t.ID, models.TaskPatch{ProjectID: &pid}, t.UpdatedAt); err != nil {
			e.logger.Error(ctx, "task relink failed", "op", "create_project", "id", t.ID, "err", err)
		}
	}
}

// UpdateProject applies patch locally, then remotely.
func (e *Engine) UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) error {
	if patch.Empty() {
		return nil
	}
	if patch.Status != nil && !models.ProjectStatusValid(*patch.Status) {
		return ErrInvalidStatus
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return ErrEmptyTitle
	}

	e.mu.Lock()
	i := e.projectIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	patch.Apply(&e.state.Projects[i])
	e.mu.Unlock()

	log := e.logger.With("op", "update_project", "id", id)
	if models.IsTempID(id) {
		log.Debug(ctx, "project not confirmed yet, change saved after the insert")
		return nil
	}
	if err := e.store.Projects().Update(ctx, id, patch); err != nil {
		log.Error(ctx, "remote update failed", "err", err)
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// DeleteProject removes the project and all of its tasks in one local
// update, then deletes the tasks and the project remotely.
func (e *Engine) DeleteProject(ctx context.Context, id string) error {
	e.mu.Lock()
	i := e.projectIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	e.state.Projects = slices.Delete(e.state.Projects, i, i+1)
	e.state.Tasks = slices.DeleteFunc(e.state.Tasks, func(t models.Task) bool { return t.InProject(id) })
	e.mu.Unlock()

	log := e.logger.With("op", "delete_project", "id", id)
	if models.IsTempID(id) {
		return nil
	}
	var errs []error
	if err := e.store.Tasks().DeleteByProject(ctx, id); err != nil {
		log.Error(ctx, "remote task cascade failed", "err", err)
		errs = append(errs, err)
	}
	if err := e.store.Projects().Delete(ctx, id); err != nil {
		log.Error(ctx, "remote delete failed", "err", err)
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("delete project: %w", errors.Join(errs...))
	}
	return nil
}
