package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/ai"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/views"
)

func (a *App) listProjects() {
	projects := a.engine.Projects()
	if len(projects) == 0 {
		a.println("No projects.")
		return
	}
	counts := views.ProjectCounts(a.engine.Tasks())
	uid := a.engine.UserID()
	for _, p := range projects {
		role := "shared"
		if p.OwnerID == uid {
			role = "owner"
		}
		line := fmt.Sprintf("%s  %s  [%s, %s]  %d tasks  %d members", p.ID, p.Title, p.Status, role, counts[p.ID], len(p.Members))
		if p.Deadline != nil {
			line += " due " + *p.Deadline
		}
		if p.Cost != nil {
			line += fmt.Sprintf(" cost %.2f", *p.Cost)
		}
		a.println(line)
	}
	if n := counts[""]; n > 0 {
		a.printf("%d tasks outside projects\n", n)
	}
}

func (a *App) addProject(ctx context.Context, title string) {
	draft := models.ProjectDraft{Title: title}
	if draft.Title == "" {
		var err error
		if draft.Title, err = a.ask("Project title"); a.fail(err) {
			return
		}
	}
	desc, err := a.ask("Description (empty to skip)")
	if a.fail(err) {
		return
	}
	draft.Description = desc
	if draft.Deadline, err = a.askDate("Deadline"); a.fail(err) {
		return
	}
	if draft.Cost, err = a.askFloat("Cost"); a.fail(err) {
		return
	}

	p, err := a.engine.CreateProject(ctx, draft)
	if a.fail(err) {
		return
	}
	a.ok("Created project %s", p.ID)
}

func (a *App) deleteProject(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.usage("delproject <projectID>")
		return
	}
	p, err := a.resolveProject(args[0])
	if a.fail(err) {
		return
	}
	if a.tab == p.ID {
		a.tab = views.TabAll
	}
	if a.fail(a.engine.DeleteProject(ctx, p.ID)) {
		return
	}
	a.ok("Deleted project %q and its tasks", p.Title)
}

func (a *App) invite(args []string) {
	if len(args) != 1 {
		a.usage("invite <projectID>")
		return
	}
	p, err := a.resolveProject(args[0])
	if a.fail(err) {
		return
	}
	token, err := a.engine.InviteToken(p.ID)
	if a.fail(err) {
		return
	}
	a.printf("Share this invite: %s\n", token)
}

func (a *App) join(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.usage("join <token>")
		return
	}
	id, err := a.engine.JoinByInvite(ctx, args[0])
	if a.fail(err) {
		return
	}
	a.tab = id
	title := id
	if p, ok := a.engine.Project(id); ok {
		title = p.Title
	}
	a.ok("Joined project %q", title)
}

func (a *App) listMembers(args []string) {
	if len(args) != 1 {
		a.usage("members <projectID>")
		return
	}
	p, err := a.resolveProject(args[0])
	if a.fail(err) {
		return
	}
	for _, m := range p.Members {
		a.printf("%d  %s  %s\n", m.UserID, m.Name, m.Role)
	}
}

func (a *App) kick(ctx context.Context, args []string) {
	if len(args) != 2 {
		a.usage("kick <projectID> <userID>")
		return
	}
	p, err := a.resolveProject(args[0])
	if a.fail(err) {
		return
	}
	uid, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		a.fail(fmt.Errorf("bad user id %q", args[1]))
		return
	}
	if a.fail(a.engine.RemoveMember(ctx, p.ID, uid)) {
		return
	}
	a.ok("Removed %d from %q", uid, p.Title)
}

func (a *App) leave(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.usage("leave <projectID>")
		return
	}
	p, err := a.resolveProject(args[0])
	if a.fail(err) {
		return
	}
	if a.fail(a.engine.LeaveProject(ctx, p.ID)) {
		return
	}
	if a.tab == p.ID {
		a.tab = views.TabAll
	}
	a.ok("Left project %q", p.Title)
}

// estimate asks the AI service for a price range.
func (a *App) estimate(ctx context.Context) {
	if a.ai == nil {
		a.fail(fmt.Errorf("AI service %w", ErrNotConfigured))
		return
	}

	req := ai.EstimateRequest{Language: a.language()}
	var err error
	if req.ProjectType, err = a.ask("Project type (website, bot, design...)"); a.fail(err) {
		return
	}
	if req.Description, err = a.ask("Short description"); a.fail(err) {
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		a.fail(errors.New("description is required"))
		return
	}
	rate, err := a.askFloat("Hourly rate")
	if a.fail(err) {
		return
	}
	if rate != nil {
		req.HourlyRate = *rate
	}
	if req.Experience, err = a.ask("Experience (junior, middle, senior)"); a.fail(err) {
		return
	}
	est, err := a.ai.EstimateCost(ctx, req)
	if err != nil {
		a.logger.Warn(ctx, "cost estimation failed", "err", err)
		a.println(ai.UserMessage(err, a.language()))
		return
	}
	a.printf("%.0f-%.0f %s, %.0f-%.0f h, complexity: %s\n", est.MinPrice, est.MaxPrice, est.Currency, est.MinHours, est.MaxHours, est.Complexity)
	if est.Explanation != "" {
		a.println(est.Explanation)
	}
}
