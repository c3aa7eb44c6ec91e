package engine

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// CreateTask adds a task owned by the current user.
func (e *Engine) CreateTask(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return models.Task{}, ErrEmptyTitle
	}
	if draft.ProjectID != nil {
		if _, ok := e.Project(*draft.ProjectID); !ok {
			return models.Task{}, ErrNotFound
		}
	}
	if draft.Status == "" {
		draft.Status = models.StatusInProgress
	}

	now := e.now()
	t := models.Task{
		ID:          e.tempID(),
		UserID:      e.UserID(),
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Subtasks:    numberSubtasks(draft.Subtasks),
		Status:      draft.Status,
		Priority:    models.ParsePriority(string(draft.Priority)),
		Deadline:    draft.Deadline,
		Client:      draft.Client,
		ProjectID:   draft.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t = t.Clone()

	e.mu.Lock()
	e.state.Tasks = append([]models.Task{t}, e.state.Tasks...)
	e.mu.Unlock()

	log := e.logger.With("op", "create_task", "temp_id", t.ID)
	id, err := e.store.Tasks().Insert(ctx, t)
	if err != nil {
		log.Error(ctx, "remote insert failed", "err", err)
		return t.Clone(), fmt.Errorf("create task: %w", err)
	}

	e.mu.Lock()
	i := e.taskIndex(t.ID)
	var out models.Task
	if i >= 0 {
		e.state.Tasks[i].ID = id
		out = e.state.Tasks[i].Clone()
	}
	e.mu.Unlock()

	if i < 0 {
		if err := e.store.Tasks().Delete(ctx, id); err != nil {
			log.Warn(ctx, "orphan cleanup failed", "id", id, "err", err)
		}
		return models.Task{}, ErrNotFound
	}
	if err := e.flushTask(ctx, t, out); err != nil {
		log.Error(ctx, "pending changes not saved", "id", id, "err", err)
		return out, fmt.Errorf("create task: %w", err)
	}
	return out, nil
}

// flushTask writes the changes made to a task while its insert was in
// flight. A project id that is still temporary is left to the project
// relink.
func (e *Engine) flushTask(ctx context.Context, inserted, local models.Task) error {
	patch := models.TaskChanges(inserted, local)
	if patch.ProjectID != nil && models.IsTempID(*patch.ProjectID) {
		patch.ProjectID = nil
	}
	if patch.Empty() {
		return nil
	}
	return e.store.Tasks().Update(ctx, local.ID, patch, local.UpdatedAt)
}

// numberSubtasks copies subtasks, giving id-less entries their 1-based
// position as id.
func numberSubtasks(in []models.Subtask) []models.Subtask {
	out := make([]models.Subtask, len(in))
	for i, s := range in {
		if s.ID == "" {
			s.ID = strconv.Itoa(i + 1)
		}
		out[i] = s
	}
	return out
}

// UpdateTask applies patch locally and remotely, stamping UpdatedAt.
func (e *Engine) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) error {
	if patch.Empty() {
		return nil
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return ErrEmptyTitle
	}
	if patch.Priority != nil {
		p := models.ParsePriority(string(*patch.Priority))
		patch.Priority = &p
	}
	if patch.Subtasks != nil {
		subs := numberSubtasks(*patch.Subtasks)
		patch.Subtasks = &subs
	}

	now := e.now()
	e.mu.Lock()
	i := e.taskIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	patch.Apply(&e.state.Tasks[i])
	e.state.Tasks[i].UpdatedAt = now
	e.mu.Unlock()

	log := e.logger.With("op", "update_task", "id", id)
	if models.IsTempID(id) {
		log.Debug(ctx, "task not confirmed yet, change saved after the insert")
		return nil
	}
	if err := e.store.Tasks().Update(ctx, id, patch, now); err != nil {
		log.Error(ctx, "remote update failed", "err", err)
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// ToggleTask flips a task between completed and in-progress.
func (e *Engine) ToggleTask(ctx context.Context, id string) error {
	t, ok := e.Task(id)
	if !ok {
		return ErrNotFound
	}
	status := models.StatusCompleted
	if t.Done() {
		status = models.StatusInProgress
	}
	return e.UpdateTask(ctx, id, models.TaskPatch{Status: &status})
}

// ToggleSubtask flips the completed flag of one subtask.
func (e *Engine) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	t, ok := e.Task(taskID)
	if !ok {
		return ErrNotFound
	}
	i := slices.IndexFunc(t.Subtasks, func(s models.Subtask) bool { return s.ID == subtaskID })
	if i < 0 {
		return ErrNotFound
	}
	t.Subtasks[i].Completed = !t.Subtasks[i].Completed
	return e.UpdateTask(ctx, taskID, models.TaskPatch{Subtasks: &t.Subtasks})
}

// AddSubtasks appends new subtasks with the given titles.
func (e *Engine) AddSubtasks(ctx context.Context, taskID string, titles []string) error {
	t, ok := e.Task(taskID)
	if !ok {
		return ErrNotFound
	}
	next := 0
	for _, s := range t.Subtasks {
		if n, err := strconv.Atoi(s.ID); err == nil && n > next {
			next = n
		}
	}
	subs := t.Subtasks
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		next++
		subs = append(subs, models.Subtask{ID: strconv.Itoa(next), Title: title})
	}
	return e.UpdateTask(ctx, taskID, models.TaskPatch{Subtasks: &subs})
}

// DeleteTask removes a task locally and remotely.
func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	e.mu.Lock()
	i := e.taskIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	e.state.Tasks = slices.Delete(e.state.Tasks, i, i+1)
	e.mu.Unlock()

	if models.IsTempID(id) {
		return nil
	}
	if err := e.store.Tasks().Delete(ctx, id); err != nil {
		e.logger.Error(ctx, "remote delete failed", "op", "delete_task", "id", id, "err", err)
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
