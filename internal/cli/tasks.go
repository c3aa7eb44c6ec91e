package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/ai"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/engine"
	"github.com/dmitrijs2005/taskkeeper/internal/hostbridge"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/views"
)

func (a *App) listTasks() {
	tasks := views.FilterTasks(a.engine.Tasks(), a.tab, a.now())
	if len(tasks) == 0 {
		a.println("No tasks.")
		return
	}
	for _, t := range tasks {
		a.println(formatTask(t))
	}
	done, total := views.Progress(tasks)
	a.printf("%d/%d done\n", done, total)
}

func formatTask(t models.Task) string {
	var b strings.Builder
	mark := " "
	if t.Done() {
		mark = "x"
	}
	fmt.Fprintf(&b, "[%s] %s  %s  (%s, %s)", mark, t.ID, t.Title, t.Status, t.Priority)
	if t.Deadline != nil {
		fmt.Fprintf(&b, " due %s", *t.Deadline)
	}
	if t.Client != nil {
		fmt.Fprintf(&b, " @%s", *t.Client)
	}
	if len(t.Subtasks) > 0 {
		done := 0
		for _, s := range t.Subtasks {
			if s.Completed {
				done++
			}
		}
		fmt.Fprintf(&b, "  %d/%d subtasks", done, len(t.Subtasks))
		for _, s := range t.Subtasks {
			m := " "
			if s.Completed {
				m = "x"
			}
			fmt.Fprintf(&b, "\n      [%s] %s. %s", m, s.ID, s.Title)
		}
	}
	return b.String()
}

func (a *App) setTab(args []string) {
	if len(args) == 0 {
		a.println("Tab:", a.tab)
		return
	}
	if args[0] == views.TabAll {
		a.backToAll()
		return
	}
	p, err := a.resolveProject(args[0])
	if a.fail(err) {
		return
	}
	a.tab = p.ID
	a.bridge.SetBackButton(true, a.backToAll)
	a.bridge.Haptic(hostbridge.HapticLight)
	a.printf("Tab: %s\n", p.Title)
}

// back presses the host back button. Without a host it returns to the all tab
// directly.
func (a *App) back() {
	a.bridge.Back()
	if a.tab != views.TabAll {
		a.backToAll()
	}
}

func (a *App) backToAll() {
	a.tab = views.TabAll
	a.bridge.SetBackButton(false, nil)
	a.println("Tab: all")
}

func (a *App) addTask(ctx context.Context, title string) {
	if title == "" {
		var err error
		if title, err = a.ask("Task title"); a.fail(err) {
			return
		}
	}
	t, err := a.engine.CreateTask(ctx, models.TaskDraft{Title: title, ProjectID: a.currentProject()})
	if a.fail(err) {
		return
	}
	a.ok("Created task %s", t.ID)
}

// aiTask creates a task from free text parsed by the AI service.
func (a *App) aiTask(ctx context.Context, text string) {
	if text == "" {
		a.usage("ai <free text>")
		return
	}
	if a.ai == nil {
		a.fail(fmt.Errorf("AI service %w", ErrNotConfigured))
		return
	}

	clients := a.engine.Clients()
	names := make([]string, 0, len(clients))
	for _, c := range clients {
		names = append(names, c.Name)
	}

	parsed, err := a.ai.ParseTask(ctx, ai.ParseTaskRequest{
		Text:        text,
		Clients:     names,
		CurrentDate: a.now().Format(common.DateLayout),
	})
	if err != nil {
		a.logger.Warn(ctx, "task parsing failed", "err", err)
		a.bridge.Haptic(hostbridge.HapticError)
		a.println(ai.UserMessage(err, a.language()))
		return
	}

	t, err := a.engine.CreateTask(ctx, parsed.Draft(a.currentProject()))
	if a.fail(err) {
		return
	}
	a.ok("Created task %s", t.ID)
	a.println(formatTask(t))
}

func (a *App) toggleTask(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.usage("done <taskID>")
		return
	}
	t, err := a.resolveTask(args[0])
	if a.fail(err) {
		return
	}
	if a.fail(a.engine.ToggleTask(ctx, t.ID)) {
		return
	}
	t, _ = a.engine.Task(t.ID)
	a.ok("%s: %s", t.Title, t.Status)
}

func (a *App) setTaskStatus(ctx context.Context, args []string) {
	if len(args) < 2 {
		a.usage("setstatus <taskID> <status>")
		return
	}
	t, err := a.resolveTask(args[0])
	if a.fail(err) {
		return
	}
	status := models.Status(strings.Join(args[1:], " "))
	if !status.Valid(a.prefs.Current().CustomStatuses) {
		a.fail(fmt.Errorf("%w: %s", engine.ErrInvalidStatus, status))
		return
	}
	if a.fail(a.engine.UpdateTask(ctx, t.ID, models.TaskPatch{Status: &status})) {
		return
	}
	a.ok("%s: %s", t.Title, status)
}

// generateSubtasks appends an AI-generated checklist to a task.
func (a *App) generateSubtasks(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.usage("subtasks <taskID>")
		return
	}
	if a.ai == nil {
		a.fail(fmt.Errorf("AI service %w", ErrNotConfigured))
		return
	}
	t, err := a.resolveTask(args[0])
	if a.fail(err) {
		return
	}

	titles, err := a.ai.GenerateSubtasks(ctx, t.Title, a.language())
	if err != nil {
		a.logger.Warn(ctx, "subtask generation failed", "task", t.ID, "err", err)
		a.bridge.Haptic(hostbridge.HapticError)
		a.println(ai.UserMessage(err, a.language()))
		return
	}
	if len(titles) == 0 {
		a.println("No subtasks suggested.")
		return
	}
	if a.fail(a.engine.AddSubtasks(ctx, t.ID, titles)) {
		return
	}
	t, _ = a.engine.Task(t.ID)
	a.ok("Added %d subtasks", len(titles))
	a.println(formatTask(t))
}

func (a *App) toggleSubtask(ctx context.Context, args []string) {
	if len(args) != 2 {
		a.usage("check <taskID> <subtaskID>")
		return
	}
	t, err := a.resolveTask(args[0])
	if a.fail(err) {
		return
	}
	if a.fail(a.engine.ToggleSubtask(ctx, t.ID, args[1])) {
		return
	}
	t, _ = a.engine.Task(t.ID)
	a.println(formatTask(t))
}

func (a *App) deleteTask(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.usage("deltask <taskID>")
		return
	}
	t, err := a.resolveTask(args[0])
	if a.fail(err) {
		return
	}
	if a.fail(a.engine.DeleteTask(ctx, t.ID)) {
		return
	}
	a.ok("Deleted task %q", t.Title)
}
