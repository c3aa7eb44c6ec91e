// Package common defines sentinel errors shared by the store, engine and
// client layers of TaskKeeper. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Transport errors.
	ErrUnavailable = errors.New("service unavailable")

	// Auth errors (invalid, expired or malformed launch credentials).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
