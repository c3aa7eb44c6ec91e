package models

import "slices"

// ProjectChanges returns the patch that turns from into to.
func ProjectChanges(from, to Project) ProjectPatch {
	var p ProjectPatch
	if from.Title != to.Title {
		p.Title = &to.Title
	}
	if from.Description != to.Description {
		p.Description = &to.Description
	}
	if from.Status != to.Status {
		p.Status = &to.Status
	}
	p.Deadline, p.ClearDeadline = optionalChange(from.Deadline, to.Deadline)
	switch {
	case to.Cost == nil && from.Cost != nil:
		p.ClearCost = true
	case to.Cost != nil && (from.Cost == nil || *from.Cost != *to.Cost):
		v := *to.Cost
		p.Cost = &v
	}
	return p
}

// TaskChanges returns the patch that turns from into to. UpdatedAt is not
// part of the patch.
func TaskChanges(from, to Task) TaskPatch {
	var p TaskPatch
	if from.Title != to.Title {
		p.Title = &to.Title
	}
	if from.Description != to.Description {
		p.Description = &to.Description
	}
	if !slices.Equal(from.Subtasks, to.Subtasks) {
		subs := append([]Subtask{}, to.Subtasks...)
		p.Subtasks = &subs
	}
	if from.Status != to.Status {
		p.Status = &to.Status
	}
	if from.Priority != to.Priority {
		p.Priority = &to.Priority
	}
	p.Deadline, p.ClearDeadline = optionalChange(from.Deadline, to.Deadline)
	p.Client, p.ClearClient = optionalChange(from.Client, to.Client)
	p.ProjectID, p.ClearProject = optionalChange(from.ProjectID, to.ProjectID)
	return p
}

// ClientChanges returns the patch that turns from into to.
func ClientChanges(from, to Client) ClientPatch {
	var p ClientPatch
	if from.Name != to.Name {
		p.Name = &to.Name
	}
	if from.Contact != to.Contact {
		p.Contact = &to.Contact
	}
	p.Avatar, p.ClearAvatar = optionalChange(from.Avatar, to.Avatar)
	return p
}

func optionalChange(from, to *string) (*string, bool) {
	switch {
	case to == nil:
		return nil, from != nil
	case from == nil || *from != *to:
		return cloneString(to), false
	}
	return nil, false
}
