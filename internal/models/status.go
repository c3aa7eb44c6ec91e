// Package models defines the TaskKeeper domain types shared by the store,
// the sync engine and the views.
package models

import "strings"

// Status is a lifecycle state of a project or task. Tasks may also carry
// user-defined custom statuses.
type Status string

const (
	StatusInProgress      Status = "in-progress"
	StatusOnHold          Status = "on-hold"
	StatusCompleted       Status = "completed"
	StatusAwaitingPayment Status = "awaiting-payment"
	StatusPaid            Status = "paid"
)

// BuiltinStatuses lists the fixed statuses in display order.
var BuiltinStatuses = []Status{
	StatusInProgress,
	StatusOnHold,
	StatusCompleted,
	StatusAwaitingPayment,
	StatusPaid,
}

// Builtin reports whether s is one of the fixed statuses.
func (s Status) Builtin() bool {
	for _, b := range BuiltinStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// Valid reports whether s is usable on a task given the user's custom list.
func (s Status) Valid(custom []Status) bool {
	if s.Builtin() {
		return true
	}
	for _, c := range custom {
		if s == c {
			return true
		}
	}
	return false
}

// ProjectStatusValid reports whether s may be set on a project. Projects do
// not accept custom statuses.
func ProjectStatusValid(s Status) bool {
	return s.Builtin()
}

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority normalizes free input; unknown values become medium.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Role of a user within a project.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)
