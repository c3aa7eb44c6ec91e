package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/ai"
	"github.com/dmitrijs2005/taskkeeper/internal/engine"
	"github.com/dmitrijs2005/taskkeeper/internal/hostbridge"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/prefs"
	"github.com/dmitrijs2005/taskkeeper/internal/views"
)

// ErrNotConfigured is reported when an optional service is missing.
var ErrNotConfigured = errors.New("not configured")

// AIService is the subset of the AI client the REPL uses.
type AIService interface {
	ParseTask(ctx context.Context, req ai.ParseTaskRequest) (ai.ParsedTask, error)
	GenerateSubtasks(ctx context.Context, title, language string) ([]string, error)
	EstimateCost(ctx context.Context, req ai.EstimateRequest) (ai.Estimate, error)
}

// AvatarService stores client avatar images.
type AvatarService interface {
	Upload(ctx context.Context, clientID string, data []byte) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// Deps are the collaborators of an App. AI and Avatars may be nil.
type Deps struct {
	Engine      *engine.Engine
	Prefs       *prefs.Store
	AI          AIService
	Avatars     AvatarService
	Bridge      hostbridge.Bridge
	Logger      logging.Logger
	In          io.Reader
	Out         io.Writer
	Interactive bool
	Now         func() time.Time
}

type App struct {
	engine  *engine.Engine
	prefs   *prefs.Store
	ai      AIService
	avatars AvatarService
	bridge  hostbridge.Bridge
	logger  logging.Logger

	reader      *bufio.Reader
	out         io.Writer
	interactive bool
	now         func() time.Time
	readFile    func(string) ([]byte, error)

	tab string
}

func NewApp(d Deps) *App {
	a := &App{
		engine:      d.Engine,
		prefs:       d.Prefs,
		ai:          d.AI,
		avatars:     d.Avatars,
		bridge:      d.Bridge,
		logger:      d.Logger,
		reader:      bufio.NewReader(d.In),
		out:         d.Out,
		interactive: d.Interactive,
		now:         d.Now,
		readFile:    os.ReadFile,
		tab:         views.TabAll,
	}
	if a.bridge == nil {
		a.bridge = hostbridge.Standalone{}
	}
	if a.logger == nil {
		a.logger = logging.Nop{}
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Run performs the startup sequence and blocks in the REPL until exit.
func (a *App) Run(ctx context.Context) error {
	a.bridge.Ready()
	a.bridge.Expand()

	a.prefs.Load(ctx, prefs.Hints{
		ColorScheme:  a.bridge.ColorScheme(),
		LanguageCode: a.bridge.LanguageCode(),
	})

	if err := a.engine.Load(ctx); err != nil {
		a.logger.Warn(ctx, "initial load incomplete", "err", err)
		a.printf("Some data could not be loaded: %v\n", err)
	}

	if start := a.bridge.StartParam(); start != "" {
		a.autoJoin(ctx, start)
	}

	who := "guest"
	if u := a.bridge.User(); u != nil {
		who = u.DisplayName()
	}
	a.printf("Welcome to TaskKeeper, %s (type 'help' for commands)\n", who)

	a.runREPL(ctx)
	return nil
}

// autoJoin joins the project named by a launch start parameter.
func (a *App) autoJoin(ctx context.Context, token string) {
	if _, err := engine.ParseInvite(token); err != nil {
		return
	}
	id, err := a.engine.JoinByInvite(ctx, token)
	if err != nil {
		a.logger.Warn(ctx, "auto-join failed", "token", token, "err", err)
		a.printf("Could not join the shared project: %v\n", err)
		return
	}
	a.tab = id
	if p, ok := a.engine.Project(id); ok {
		a.printf("Joined project %q\n", p.Title)
	}
}

func (a *App) language() string {
	return string(a.prefs.Current().Language)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// fail prints err and reports whether there was one.
func (a *App) fail(err error) bool {
	if err == nil {
		return false
	}
	a.bridge.Haptic(hostbridge.HapticError)
	a.println("Error:", err)
	return true
}

func (a *App) ok(format string, args ...any) {
	a.bridge.Haptic(hostbridge.HapticSuccess)
	a.printf(format+"\n", args...)
}
