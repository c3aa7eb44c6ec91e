package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/hostbridge"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/prefs"
	"github.com/dmitrijs2005/taskkeeper/internal/views"
)

func (a *App) theme(ctx context.Context, args []string) {
	var t prefs.Theme
	var err error
	if len(args) == 0 {
		t, err = a.prefs.ToggleTheme(ctx)
	} else {
		t = prefs.Theme(strings.ToLower(args[0]))
		err = a.prefs.SetTheme(ctx, t)
	}
	if a.fail(err) {
		return
	}
	a.bridge.Haptic(hostbridge.HapticLight)
	a.println("Theme:", t)
}

func (a *App) lang(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Language:", a.prefs.Current().Language)
		return
	}
	l := prefs.Language(strings.ToLower(args[0]))
	if a.fail(a.prefs.SetLanguage(ctx, l)) {
		return
	}
	a.println("Language:", l)
}

func (a *App) customStatus(ctx context.Context, args []string) {
	if len(args) < 2 {
		a.usage("status add|rm <name>")
		return
	}
	name := strings.Join(args[1:], " ")
	switch args[0] {
	case "add":
		if a.fail(a.prefs.AddCustomStatus(ctx, name)) {
			return
		}
		a.ok("Added status %q", name)
	case "rm":
		if a.fail(a.prefs.RemoveCustomStatus(ctx, name)) {
			return
		}
		a.ok("Removed status %q", name)
	default:
		a.usage("status add|rm <name>")
	}
}

func (a *App) listStatuses() {
	for _, s := range models.BuiltinStatuses {
		a.println(s)
	}
	for _, s := range a.prefs.Current().CustomStatuses {
		a.println(s, "(custom)")
	}
}

func (a *App) reload(ctx context.Context) {
	err := a.engine.Load(ctx)
	if err != nil {
		a.fail(err)
	}
	if a.tab != views.TabAll {
		if _, ok := a.engine.Project(a.tab); !ok {
			a.tab = views.TabAll
		}
	}
	s := a.engine.Snapshot()
	a.printf("Loaded %d projects, %d tasks, %d clients\n", len(s.Projects), len(s.Tasks), len(s.Clients))
}

func (a *App) deleteAccount(ctx context.Context) {
	answer, err := a.ask("Type 'yes' to delete your account and all its data")
	if a.fail(err) {
		return
	}
	if answer != "yes" {
		a.println("Cancelled.")
		return
	}
	if a.fail(a.engine.DeleteAccount(ctx)) {
		return
	}
	a.tab = views.TabAll
	a.ok("Account deleted.")
}
