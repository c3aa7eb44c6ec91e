package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/ai"
	"github.com/dmitrijs2005/taskkeeper/internal/engine"
	"github.com/dmitrijs2005/taskkeeper/internal/hostbridge"
	"github.com/dmitrijs2005/taskkeeper/internal/identity"
	"github.com/dmitrijs2005/taskkeeper/internal/localdb"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/prefs"
	"github.com/dmitrijs2005/taskkeeper/internal/store/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeAI struct {
	parseReq ai.ParseTaskRequest
	parsed   ai.ParsedTask
	parseErr error

	subtasks    []string
	subtasksErr error
	subLang     string

	estimateReq ai.EstimateRequest
	estimate    ai.Estimate
}

func (f *fakeAI) ParseTask(_ context.Context, req ai.ParseTaskRequest) (ai.ParsedTask, error) {
	f.parseReq = req
	return f.parsed, f.parseErr
}

func (f *fakeAI) GenerateSubtasks(_ context.Context, _ string, language string) ([]string, error) {
	f.subLang = language
	return f.subtasks, f.subtasksErr
}

func (f *fakeAI) EstimateCost(_ context.Context, req ai.EstimateRequest) (ai.Estimate, error) {
	f.estimateReq = req
	return f.estimate, nil
}

type fakeAvatars struct {
	uploaded map[string][]byte
}

func (f *fakeAvatars) Upload(_ context.Context, clientID string, data []byte) (string, error) {
	key := "avatars/2025/03/" + clientID + "/k"
	f.uploaded[key] = data
	return key, nil
}

func (f *fakeAvatars) PresignGet(_ context.Context, key string) (string, error) {
	return "http://get/" + key, nil
}

type harness struct {
	app   *App
	out   *bytes.Buffer
	store *memory.Store
	eng   *engine.Engine
	ai    *fakeAI
	prefs *prefs.Store
}

func alice() *hostbridge.User {
	return &hostbridge.User{ID: 100, FirstName: "Alice", LanguageCode: "en"}
}

// newHarness builds an App over an in-memory store. input feeds prompts and,
// for Run, the command script.
func newHarness(t *testing.T, input string, bridge hostbridge.Bridge) *harness {
	t.Helper()
	ctx := context.Background()

	db, err := localdb.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if bridge == nil {
		bridge = hostbridge.NewSession(hostbridge.Launch{User: alice()}, logging.Nop{})
	}
	st := memory.New()
	eng := engine.New(st, identity.NewResolver(bridge.User()), logging.Nop{},
		engine.WithClock(func() time.Time { return testNow }))
	ps := prefs.New(db.Metadata, logging.Nop{})
	fa := &fakeAI{}
	out := &bytes.Buffer{}

	app := NewApp(Deps{
		Engine:  eng,
		Prefs:   ps,
		AI:      fa,
		Avatars: &fakeAvatars{uploaded: map[string][]byte{}},
		Bridge:  bridge,
		Logger:  logging.Nop{},
		In:      strings.NewReader(input),
		Out:     out,
		Now:     func() time.Time { return testNow },
	})
	return &harness{app: app, out: out, store: st, eng: eng, ai: fa, prefs: ps}
}

func (h *harness) run(t *testing.T, lines ...string) string {
	t.Helper()
	h.out.Reset()
	for _, l := range lines {
		require.True(t, h.app.dispatch(context.Background(), l), "dispatch stopped at %q", l)
	}
	return h.out.String()
}

func TestRun_Script(t *testing.T) {
	h := newHarness(t, "add Write report\nadd Call bank\ntasks\nfoobar\nexit\nadd never\n", nil)

	require.NoError(t, h.app.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Welcome to TaskKeeper, Alice")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "0/2 done")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Bye!")
	assert.Len(t, h.eng.Tasks(), 2)
}

func TestRun_AutoJoinFromStartParam(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "", nil)

	id, err := h.store.Projects().Insert(ctx, models.Project{OwnerID: 200, Title: "Shared", Status: models.StatusInProgress})
	require.NoError(t, err)
	require.NoError(t, h.store.Members().Insert(ctx, models.Membership{ProjectID: id, UserID: 200, Role: models.RoleOwner}))

	h.app.bridge = hostbridge.NewSession(hostbridge.Launch{User: alice(), StartParam: engine.InviteToken(id)}, logging.Nop{})
	require.NoError(t, h.app.Run(ctx))

	assert.Contains(t, h.out.String(), `Joined project "Shared"`)
	assert.Contains(t, h.out.String(), "Welcome to TaskKeeper, Alice")
	_, ok := h.eng.Project(id)
	assert.True(t, ok)
	assert.Equal(t, id, h.app.tab)
}

func TestTaskCommands(t *testing.T) {
	h := newHarness(t, "", nil)

	h.run(t, "add Write report")
	tasks := h.eng.Tasks()
	require.Len(t, tasks, 1)
	id := tasks[0].ID
	assert.False(t, models.IsTempID(id))

	out := h.run(t, "done "+id[:8])
	assert.Contains(t, out, "Write report: completed")

	out = h.run(t, "tasks")
	assert.Contains(t, out, "[x] "+id)
	assert.Contains(t, out, "1/1 done")

	out = h.run(t, "deltask "+id)
	assert.Contains(t, out, `Deleted task "Write report"`)
	assert.Empty(t, h.eng.Tasks())

	out = h.run(t, "done", "deltask nope")
	assert.Contains(t, out, "Usage: done <taskID>")
	assert.Contains(t, out, `unknown task "nope"`)
}

func TestAddTask_PromptsForTitle(t *testing.T) {
	h := newHarness(t, "Prompted title\n", nil)
	h.run(t, "add")
	require.Len(t, h.eng.Tasks(), 1)
	assert.Equal(t, "Prompted title", h.eng.Tasks()[0].Title)
}

func TestSetStatus_CustomStatuses(t *testing.T) {
	h := newHarness(t, "", nil)
	h.run(t, "add Logo")
	id := h.eng.Tasks()[0].ID

	out := h.run(t, "setstatus "+id+" review")
	assert.Contains(t, out, "invalid status")

	h.run(t, "status add review", "setstatus "+id+" review")
	task, _ := h.eng.Task(id)
	assert.Equal(t, models.Status("review"), task.Status)

	out = h.run(t, "statuses")
	assert.Contains(t, out, "review (custom)")
	assert.Contains(t, out, "in-progress")

	h.run(t, "status rm review")
	assert.Empty(t, h.prefs.Current().CustomStatuses)
}

func TestAITask(t *testing.T) {
	h := newHarness(t, "Acme\n\n", nil)
	h.run(t, "addclient")
	client := "Acme"
	deadline := "2025-03-14"
	h.ai.parsed = ai.ParsedTask{Title: "Logo", Client: &client, Deadline: &deadline, Priority: models.PriorityHigh, Subtasks: []string{"sketch"}}

	out := h.run(t, "ai logo for acme by friday")

	assert.Equal(t, "logo for acme by friday", h.ai.parseReq.Text)
	assert.Equal(t, []string{"Acme"}, h.ai.parseReq.Clients)
	assert.Equal(t, "2025-03-10", h.ai.parseReq.CurrentDate)
	assert.Contains(t, out, "Logo")
	assert.Contains(t, out, "@Acme")

	tasks := h.eng.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
	require.Len(t, tasks[0].Subtasks, 1)

	out = h.run(t, "clients")
	assert.Contains(t, out, "Acme  0/1 tasks done")
}

func TestAITask_ErrorIsLocalized(t *testing.T) {
	h := newHarness(t, "", nil)
	h.ai.parseErr = ai.ErrMalformedResponse

	out := h.run(t, "lang ru", "ai nonsense")
	assert.Contains(t, out, ai.UserMessage(ai.ErrMalformedResponse, "ru"))
	assert.Empty(t, h.eng.Tasks())
}

func TestAI_NotConfigured(t *testing.T) {
	h := newHarness(t, "", nil)
	h.app.ai = nil
	h.run(t, "add Logo")
	id := h.eng.Tasks()[0].ID

	out := h.run(t, "ai something", "subtasks "+id, "estimate")
	assert.Equal(t, 3, strings.Count(out, "AI service not configured"))
}

func TestSubtaskCommands(t *testing.T) {
	h := newHarness(t, "", nil)
	h.run(t, "add Landing page")
	id := h.eng.Tasks()[0].ID
	h.ai.subtasks = []string{"Wireframe", "Copy"}

	out := h.run(t, "lang ru", "subtasks "+id)
	assert.Contains(t, out, "Added 2 subtasks")
	assert.Equal(t, "ru", h.ai.subLang)

	h.run(t, "check "+id+" 1")
	task, _ := h.eng.Task(id)
	require.Len(t, task.Subtasks, 2)
	assert.True(t, task.Subtasks[0].Completed)
	assert.False(t, task.Subtasks[1].Completed)

	h.ai.subtasksErr = errors.New("boom")
	out = h.run(t, "lang en", "subtasks "+id)
	assert.Contains(t, out, ai.UserMessage(errors.New("boom"), "en"))
}

func TestProjectCommands(t *testing.T) {
	h := newHarness(t, "Company site\n2025-04-01\n300\n", nil)

	out := h.run(t, "addproject Site")
	assert.Contains(t, out, "Created project")
	projects := h.eng.Projects()
	require.Len(t, projects, 1)
	p := projects[0]
	assert.Equal(t, "Company site", p.Description)
	require.NotNil(t, p.Deadline)
	assert.Equal(t, "2025-04-01", *p.Deadline)
	require.NotNil(t, p.Cost)
	assert.Equal(t, 300.0, *p.Cost)

	h.run(t, "tab "+p.ID[:6], "add Page")
	assert.Equal(t, p.ID, h.app.tab)
	tasks := h.eng.Tasks()
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].ProjectID)
	assert.Equal(t, p.ID, *tasks[0].ProjectID)

	out = h.run(t, "projects")
	assert.Contains(t, out, "Site  [in-progress, owner]  1 tasks  1 members due 2025-04-01 cost 300.00")

	out = h.run(t, "invite "+p.ID)
	assert.Contains(t, out, "Share this invite: invite_"+p.ID)

	out = h.run(t, "members "+p.ID)
	assert.Contains(t, out, "100  Alice  owner")

	out = h.run(t, "kick "+p.ID+" 100")
	assert.Contains(t, out, engine.ErrNotOwner.Error())

	out = h.run(t, "delproject "+p.ID)
	assert.Contains(t, out, `Deleted project "Site" and its tasks`)
	assert.Empty(t, h.eng.Tasks())
	assert.Equal(t, views.TabAll, h.app.tab)
}

func TestAddProject_BadInput(t *testing.T) {
	h := newHarness(t, "\nnot-a-date\n\n\nabc\n", nil)

	out := h.run(t, "addproject X")
	assert.Contains(t, out, `bad date "not-a-date"`)

	out = h.run(t, "addproject Y")
	assert.Contains(t, out, `not a number: "abc"`)
	assert.Empty(t, h.eng.Projects())
}

func TestJoinAndLeave(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "", nil)
	id, err := h.store.Projects().Insert(ctx, models.Project{OwnerID: 200, Title: "Shared", Status: models.StatusInProgress})
	require.NoError(t, err)

	out := h.run(t, "join bogus")
	assert.Contains(t, out, engine.ErrInvalidInvite.Error())

	out = h.run(t, "join "+engine.InviteToken(id))
	assert.Contains(t, out, `Joined project "Shared"`)
	assert.Equal(t, id, h.app.tab)

	out = h.run(t, "projects")
	assert.Contains(t, out, "[in-progress, shared]")

	h.run(t, "leave "+id)
	assert.Empty(t, h.eng.Projects())
	assert.Equal(t, views.TabAll, h.app.tab)
}

func TestAvatarCommand(t *testing.T) {
	h := newHarness(t, "Acme\nacme@example.com\n", nil)
	h.app.readFile = func(name string) ([]byte, error) {
		if name == "logo.png" {
			return []byte("png"), nil
		}
		return nil, errors.New("no such file")
	}

	h.run(t, "addclient")
	c := h.eng.Clients()[0]

	out := h.run(t, "avatar "+c.ID+" missing.png")
	assert.Contains(t, out, "no such file")

	out = h.run(t, "avatar "+c.ID+" logo.png")
	assert.Contains(t, out, `Avatar of "Acme" updated`)
	updated, _ := h.eng.Client(c.ID)
	require.NotNil(t, updated.Avatar)
	assert.Equal(t, "avatars/2025/03/"+c.ID+"/k", *updated.Avatar)

	out = h.run(t, "clients")
	assert.Contains(t, out, "acme@example.com")
	assert.Contains(t, out, "avatar: http://get/avatars/2025/03/"+c.ID+"/k")

	h.run(t, "delclient "+c.ID)
	assert.Empty(t, h.eng.Clients())
}

func TestSettingsCommands(t *testing.T) {
	h := newHarness(t, "", nil)

	out := h.run(t, "theme")
	assert.Contains(t, out, "Theme: dark")
	assert.Equal(t, prefs.ThemeDark, h.prefs.Current().Theme)

	out = h.run(t, "theme purple")
	assert.Contains(t, out, "Error:")

	h.run(t, "theme LIGHT", "lang ru")
	assert.Equal(t, prefs.ThemeLight, h.prefs.Current().Theme)
	assert.Equal(t, prefs.LanguageRU, h.prefs.Current().Language)

	out = h.run(t, "lang")
	assert.Contains(t, out, "Language: ru")
}

func TestEstimateCommand(t *testing.T) {
	h := newHarness(t, "website\nTwo pages\n40\nsenior\n", nil)
	h.ai.estimate = ai.Estimate{MinPrice: 400, MaxPrice: 800, Currency: "USD", MinHours: 10, MaxHours: 20, Complexity: "medium", Explanation: "Simple site"}

	out := h.run(t, "estimate")
	assert.Equal(t, ai.EstimateRequest{ProjectType: "website", Description: "Two pages", HourlyRate: 40, Experience: "senior", Language: "en"}, h.ai.estimateReq)
	assert.Contains(t, out, "400-800 USD, 10-20 h, complexity: medium")
	assert.Contains(t, out, "Simple site")
}

func TestSessionCommands(t *testing.T) {
	h := newHarness(t, "no\nyes\n", nil)
	h.run(t, "add One")

	out := h.run(t, "logout")
	assert.Contains(t, out, "Logged out")
	assert.Empty(t, h.eng.Tasks())

	out = h.run(t, "reload")
	assert.Contains(t, out, "Loaded 0 projects, 1 tasks, 0 clients")

	out = h.run(t, "deleteaccount")
	assert.Contains(t, out, "Cancelled.")
	assert.Len(t, h.eng.Tasks(), 1)

	out = h.run(t, "deleteaccount")
	assert.Contains(t, out, "Account deleted.")
	assert.Empty(t, h.eng.Tasks())

	h.run(t, "reload")
	assert.Empty(t, h.eng.Tasks())
}

func TestDispatch_ExitStops(t *testing.T) {
	h := newHarness(t, "", nil)
	assert.True(t, h.app.dispatch(context.Background(), "   "))
	assert.False(t, h.app.dispatch(context.Background(), "QUIT"))
}

func TestBackButtonReturnsToAll(t *testing.T) {
	h := newHarness(t, "\n\n\n", nil)
	session := h.app.bridge.(*hostbridge.Session)

	h.run(t, "addproject Site", "tab "+h.eng.Projects()[0].ID)
	assert.NotEqual(t, views.TabAll, h.app.tab)

	out := h.run(t, "back")
	assert.Contains(t, out, "Tab: all")
	assert.Equal(t, views.TabAll, h.app.tab)

	assert.Contains(t, session.Haptics(), hostbridge.HapticSuccess)
	assert.Contains(t, session.Haptics(), hostbridge.HapticLight)
}
