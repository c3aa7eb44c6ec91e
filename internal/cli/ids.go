package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/views"
)

// matchID resolves in to one of ids: an exact match, or a unique prefix.
func matchID(kind, in string, ids []string) (string, error) {
	var found []string
	for _, id := range ids {
		if id == in {
			return id, nil
		}
		if strings.HasPrefix(id, in) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("unknown %s %q", kind, in)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("ambiguous %s %q", kind, in)
	}
}

func (a *App) resolveTask(in string) (models.Task, error) {
	tasks := a.engine.Tasks()
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	id, err := matchID("task", in, ids)
	if err != nil {
		return models.Task{}, err
	}
	t, _ := a.engine.Task(id)
	return t, nil
}

func (a *App) resolveProject(in string) (models.Project, error) {
	projects := a.engine.Projects()
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	id, err := matchID("project", in, ids)
	if err != nil {
		return models.Project{}, err
	}
	p, _ := a.engine.Project(id)
	return p, nil
}

func (a *App) resolveClient(in string) (models.Client, error) {
	clients := a.engine.Clients()
	ids := make([]string, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	id, err := matchID("client", in, ids)
	if err != nil {
		return models.Client{}, err
	}
	c, _ := a.engine.Client(id)
	return c, nil
}

// currentProject is the project new tasks go to, nil on the all tab.
func (a *App) currentProject() *string {
	if a.tab == views.TabAll {
		return nil
	}
	id := a.tab
	return &id
}

func (a *App) usage(text string) {
	a.println("Usage:", text)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(common.DateLayout, s)
}
