package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

const taskColumns = `id, user_id, title, notes, description, status, priority, deadline, client, project_id, created_at, updated_at`

// TaskRepository implements store.TaskRepository over a dbx.DBTX.
type TaskRepository struct {
	db dbx.DBTX
}

// NewTaskRepository constructs a repository bound to the given DBTX.
func NewTaskRepository(db dbx.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(s dbx.Scanner) (models.TaskRow, error) {
	var (
		row                         models.TaskRow
		status, priority            string
		deadline, client, projectID sql.NullString
	)
	err := s.Scan(
		&row.ID, &row.UserID, &row.Title, &row.Description, &row.RawSubtasks,
		&status, &priority, &deadline, &client, &projectID,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return models.TaskRow{}, err
	}
	row.Status = models.Status(status)
	row.Priority = models.Priority(priority)
	row.Deadline = stringPtr(deadline)
	row.Client = stringPtr(client)
	row.ProjectID = stringPtr(projectID)
	return row, nil
}

// ListForUser returns tasks created by userID plus every task of the
// accessible projects.
func (r *TaskRepository) ListForUser(ctx context.Context, userID int64, projectIDs []string) ([]models.TaskRow, error) {
	if projectIDs == nil {
		projectIDs = []string{}
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 OR project_id = ANY($2) ORDER BY created_at DESC`
	result, err := dbx.QueryAll(ctx, r.db, scanTask, query, userID, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	return result, nil
}

// Insert stores t with its subtasks serialized and returns the generated id.
func (r *TaskRepository) Insert(ctx context.Context, t models.Task) (string, error) {
	query := `
		INSERT INTO tasks (user_id, title, notes, description, status, priority, deadline, client, project_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		t.UserID, t.Title, t.Description, models.EncodeSubtasks(t.Subtasks),
		string(t.Status), string(t.Priority),
		nullString(t.Deadline), nullString(t.Client), nullString(t.ProjectID),
		t.CreatedAt, t.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

// Update writes the set fields of patch and stamps updated_at.
func (r *TaskRepository) Update(ctx context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error {
	var b setBuilder
	if patch.Title != nil {
		b.set("title", *patch.Title)
	}
	if patch.Description != nil {
		b.set("notes", *patch.Description)
	}
	if patch.Subtasks != nil {
		b.set("description", models.EncodeSubtasks(*patch.Subtasks))
	}
	if patch.Status != nil {
		b.set("status", string(*patch.Status))
	}
	if patch.Priority != nil {
		b.set("priority", string(*patch.Priority))
	}
	b.optional("deadline", patch.Deadline, patch.ClearDeadline)
	b.optional("client", patch.Client, patch.ClearClient)
	b.optional("project_id", patch.ProjectID, patch.ClearProject)
	b.set("updated_at", updatedAt)

	query, args := b.update("tasks", id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	return dbx.ExpectAffected(res)
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return dbx.ExpectAffected(res)
}

// DeleteByProject removes every task attached to projectID.
func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID); err != nil {
		return mapError(err)
	}
	return nil
}
