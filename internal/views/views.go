// Package views derives the ordered task lists shown to the user. All
// functions are pure: they never modify their input.
package views

import (
	"cmp"
	"slices"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// TabAll selects tasks of every project and tasks without one.
const TabAll = "all"

// CompletedWindow is how long a completed task stays visible after its last
// update.
const CompletedWindow = 24 * time.Hour

// FilterTasks returns the tasks visible under tab at now: tasks of other
// projects are dropped (unless tab is TabAll), completed tasks last updated
// more than CompletedWindow ago are dropped, and the rest is ordered
// incomplete first, then dated before undated, then by deadline.
func FilterTasks(tasks []models.Task, tab string, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if tab != TabAll && !t.InProject(tab) {
			continue
		}
		if t.Done() && now.Sub(t.UpdatedAt) > CompletedWindow {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, compareTasks)
	return out
}

func compareTasks(a, b models.Task) int {
	if c := compareBool(a.Done(), b.Done()); c != 0 {
		return c
	}
	if c := compareBool(a.Deadline == nil, b.Deadline == nil); c != 0 {
		return c
	}
	if a.Deadline != nil && b.Deadline != nil {
		return cmp.Compare(*a.Deadline, *b.Deadline)
	}
	return 0
}

// compareBool orders false before true.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// ClientTasks returns the tasks naming client, in input order.
func ClientTasks(tasks []models.Task, client string) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range tasks {
		if t.Client != nil && *t.Client == client {
			out = append(out, t)
		}
	}
	return out
}

// Progress counts completed and total tasks.
func Progress(tasks []models.Task) (done, total int) {
	for _, t := range tasks {
		if t.Done() {
			done++
		}
	}
	return done, len(tasks)
}

// ProjectCounts counts tasks per project id. Tasks without a project are
// counted under the empty key.
func ProjectCounts(tasks []models.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		key := ""
		if t.ProjectID != nil {
			key = *t.ProjectID
		}
		counts[key]++
	}
	return counts
}
