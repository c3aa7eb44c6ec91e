package models

import (
	"strings"

	"github.com/google/uuid"
)

// TempIDPrefix marks identifiers generated locally before the remote store
// has assigned a durable one.
const TempIDPrefix = "temp_"

// NewTempID returns a fresh temporary identifier.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was produced by NewTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}
