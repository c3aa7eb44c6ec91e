package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/views"
)

func (a *App) listClients(ctx context.Context) {
	clients := a.engine.Clients()
	if len(clients) == 0 {
		a.println("No clients.")
		return
	}
	tasks := a.engine.Tasks()
	for _, c := range clients {
		done, total := views.Progress(views.ClientTasks(tasks, c.Name))
		line := fmt.Sprintf("%s  %s  %d/%d tasks done", c.ID, c.Name, done, total)
		if c.Contact != "" {
			line += "  " + c.Contact
		}
		a.println(line)

		if c.Avatar != nil && a.avatars != nil {
			url, err := a.avatars.PresignGet(ctx, *c.Avatar)
			if err != nil {
				a.logger.Warn(ctx, "avatar url failed", "client", c.ID, "err", err)
				continue
			}
			a.println("    avatar:", url)
		}
	}
}

func (a *App) addClient(ctx context.Context, name string) {
	draft := models.ClientDraft{Name: name}
	var err error
	if draft.Name == "" {
		if draft.Name, err = a.ask("Client name"); a.fail(err) {
			return
		}
	}
	if draft.Contact, err = a.ask("Contact (empty to skip)"); a.fail(err) {
		return
	}

	c, err := a.engine.CreateClient(ctx, draft)
	if a.fail(err) {
		return
	}
	a.ok("Created client %s", c.ID)
}

func (a *App) deleteClient(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.usage("delclient <clientID>")
		return
	}
	c, err := a.resolveClient(args[0])
	if a.fail(err) {
		return
	}
	if a.fail(a.engine.DeleteClient(ctx, c.ID)) {
		return
	}
	a.ok("Deleted client %q", c.Name)
}

// setAvatar uploads an image file and stores its key on the client.
func (a *App) setAvatar(ctx context.Context, args []string) {
	if len(args) != 2 {
		a.usage("avatar <clientID> <file>")
		return
	}
	if a.avatars == nil {
		a.fail(fmt.Errorf("avatar storage %w", ErrNotConfigured))
		return
	}
	c, err := a.resolveClient(args[0])
	if a.fail(err) {
		return
	}
	data, err := a.readFile(args[1])
	if a.fail(err) {
		return
	}

	key, err := a.avatars.Upload(ctx, c.ID, data)
	if a.fail(err) {
		return
	}
	if a.fail(a.engine.UpdateClient(ctx, c.ID, models.ClientPatch{Avatar: &key})) {
		return
	}
	a.ok("Avatar of %q updated", c.Name)
}
