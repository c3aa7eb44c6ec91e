package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseSubtasks decodes the serialized subtask list kept in a task's
// description column. Anything that is not a JSON array of subtasks yields an
// empty list; it never fails. Entries without an id get their 1-based
// position as id.
func ParseSubtasks(raw string) []Subtask {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") {
		return []Subtask{}
	}

	var items []Subtask
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []Subtask{}
	}

	out := make([]Subtask, 0, len(items))
	for i, it := range items {
		if it.ID == "" {
			it.ID = strconv.Itoa(i + 1)
		}
		out = append(out, it)
	}
	return out
}

// EncodeSubtasks serializes subtasks for the description column. The result
// is always a JSON array, "[]" for none.
func EncodeSubtasks(subtasks []Subtask) string {
	if len(subtasks) == 0 {
		return "[]"
	}
	b, err := json.Marshal(subtasks)
	if err != nil {
		return "[]"
	}
	return string(b)
}
