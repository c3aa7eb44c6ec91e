package models

import "time"

// Task is a unit of work, optionally attached to a project and a client.
// Client is a client name, not a reference: two clients sharing a name are
// indistinguishable from a task.
type Task struct {
	ID          string
	UserID      int64
	Title       string
	Description string
	Subtasks    []Subtask
	Status      Status
	Priority    Priority
	Deadline    *string
	Client      *string
	ProjectID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Subtask belongs to exactly one task and has no lifecycle of its own.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status == StatusCompleted
}

// InProject reports whether the task is attached to projectID.
func (t Task) InProject(projectID string) bool {
	return t.ProjectID != nil && *t.ProjectID == projectID
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	c := t
	if t.Subtasks != nil {
		c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	c.Deadline = cloneString(t.Deadline)
	c.Client = cloneString(t.Client)
	c.ProjectID = cloneString(t.ProjectID)
	return c
}

// TaskRow is a task as stored remotely, with subtasks still serialized.
type TaskRow struct {
	Task
	RawSubtasks string
}

// Decode parses the serialized subtasks into the task.
func (r TaskRow) Decode() Task {
	t := r.Task
	t.Subtasks = ParseSubtasks(r.RawSubtasks)
	return t
}

// TaskDraft describes a task to create.
type TaskDraft struct {
	Title       string
	Description string
	Subtasks    []Subtask
	Status      Status
	Priority    Priority
	Deadline    *string
	Client      *string
	ProjectID   *string
}

// TaskPatch is a partial task update; nil fields are left untouched. The
// Clear* flags reset optional fields and win over the matching value.
type TaskPatch struct {
	Title         *string
	Description   *string
	Subtasks      *[]Subtask
	Status        *Status
	Priority      *Priority
	Deadline      *string
	ClearDeadline bool
	Client        *string
	ClearClient   bool
	ProjectID     *string
	ClearProject  bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Subtasks == nil &&
		p.Status == nil && p.Priority == nil &&
		p.Deadline == nil && !p.ClearDeadline &&
		p.Client == nil && !p.ClearClient &&
		p.ProjectID == nil && !p.ClearProject
}

// Apply writes the set fields into dst. UpdatedAt is the caller's concern.
func (p TaskPatch) Apply(dst *Task) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Subtasks != nil {
		dst.Subtasks = append([]Subtask{}, (*p.Subtasks)...)
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.Priority != nil {
		dst.Priority = *p.Priority
	}
	switch {
	case p.ClearDeadline:
		dst.Deadline = nil
	case p.Deadline != nil:
		dst.Deadline = cloneString(p.Deadline)
	}
	switch {
	case p.ClearClient:
		dst.Client = nil
	case p.Client != nil:
		dst.Client = cloneString(p.Client)
	}
	switch {
	case p.ClearProject:
		dst.ProjectID = nil
	case p.ProjectID != nil:
		dst.ProjectID = cloneString(p.ProjectID)
	}
}
