package models

import "time"

// Project is a task list shared between its members.
type Project struct {
	ID          string
	OwnerID     int64
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	Deadline    *string
	Cost        *float64
	Members     []Member
}

// Member is a project participant resolved for display.
type Member struct {
	UserID int64
	Name   string
	Avatar string
	Role   Role
}

// Membership is a raw project_members row.
type Membership struct {
	ProjectID string
	UserID    int64
	Role      Role
}

// Owner returns the member holding the owner role.
func (p Project) Owner() (Member, bool) {
	for _, m := range p.Members {
		if m.Role == RoleOwner {
			return m, true
		}
	}
	return Member{}, false
}

// HasMember reports whether userID participates in the project.
func (p Project) HasMember(userID int64) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Project) Clone() Project {
	c := p
	c.Deadline = cloneString(p.Deadline)
	if p.Cost != nil {
		v := *p.Cost
		c.Cost = &v
	}
	if p.Members != nil {
		c.Members = append([]Member(nil), p.Members...)
	}
	return c
}

// ProjectDraft describes a project to create.
type ProjectDraft struct {
	Title       string
	Description string
	Status      Status
	Deadline    *string
	Cost        *float64
}

// ProjectPatch is a partial project update; nil fields are left untouched.
// ClearDeadline and ClearCost reset the optional fields.
type ProjectPatch struct {
	Title         *string
	Description   *string
	Status        *Status
	Deadline      *string
	ClearDeadline bool
	Cost          *float64
	ClearCost     bool
}

// Empty reports whether the patch changes nothing.
func (p ProjectPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Deadline == nil && !p.ClearDeadline && p.Cost == nil && !p.ClearCost
}

// Apply writes the set fields into dst.
func (p ProjectPatch) Apply(dst *Project) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.ClearDeadline {
		dst.Deadline = nil
	} else if p.Deadline != nil {
		dst.Deadline = cloneString(p.Deadline)
	}
	if p.ClearCost {
		dst.Cost = nil
	} else if p.Cost != nil {
		v := *p.Cost
		dst.Cost = &v
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
