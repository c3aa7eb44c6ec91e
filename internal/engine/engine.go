// Package engine holds the session state of the signed-in user and is its
// only writer.
//
// Every mutation follows the same two phases. The optimistic change is
// applied to the local snapshot under the lock and becomes visible at once;
// the equivalent write is then sent to the remote store. Creates use
// temporary ids that are swapped for the server ids after a successful
// insert; changes made to the record meanwhile are written right after. A failed remote write is logged and returned but never rolled back,
// so the local view may drift until the next Load.
package engine

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/identity"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/store"
)

var (
	// ErrNotFound is returned for ids unknown to the local snapshot.
	ErrNotFound = common.ErrNotFound

	ErrInvalidInvite = errors.New("invalid invite token")
	ErrNotOwner      = errors.New("project owner cannot be removed")
	ErrInvalidStatus = errors.New("invalid status")
	ErrEmptyTitle    = errors.New("title is required")
	ErrGuest         = errors.New("not available in guest mode")
)

// State is the loaded data of the current user.
type State struct {
	Projects []models.Project
	Tasks    []models.Task
	Clients  []models.Client
	Premium  bool
}

func (s State) clone() State {
	out := State{Premium: s.Premium}
	out.Projects = make([]models.Project, len(s.Projects))
	for i, p := range s.Projects {
		out.Projects[i] = p.Clone()
	}
	out.Tasks = make([]models.Task, len(s.Tasks))
	for i, t := range s.Tasks {
		out.Tasks[i] = t.Clone()
	}
	out.Clients = make([]models.Client, len(s.Clients))
	for i, c := range s.Clients {
		out.Clients[i] = c.Clone()
	}
	return out
}

// Engine is the single-writer state container.
type Engine struct {
	store    store.Store
	resolver *identity.Resolver
	logger   logging.Logger

	now    func() time.Time
	tempID func() string

	mu      sync.RWMutex
	state   State
	loading bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTempIDs overrides the temporary id generator.
func WithTempIDs(gen func() string) Option {
	return func(e *Engine) { e.tempID = gen }
}

// New constructs an engine with an empty snapshot.
func New(st store.Store, resolver *identity.Resolver, logger logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
		tempID:   models.NewTempID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.clone()
}

// Projects returns a copy of the loaded projects.
func (e *Engine) Projects() []models.Project { return e.Snapshot().Projects }

// Tasks returns a copy of the loaded tasks.
func (e *Engine) Tasks() []models.Task { return e.Snapshot().Tasks }

// Clients returns a copy of the loaded clients.
func (e *Engine) Clients() []models.Client { return e.Snapshot().Clients }

// Project returns a copy of the project with the given id.
func (e *Engine) Project(id string) (models.Project, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := e.projectIndex(id)
	if i < 0 {
		return models.Project{}, false
	}
	return e.state.Projects[i].Clone(), true
}

// Task returns a copy of the task with the given id.
func (e *Engine) Task(id string) (models.Task, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := e.taskIndex(id)
	if i < 0 {
		return models.Task{}, false
	}
	return e.state.Tasks[i].Clone(), true
}

// Client returns a copy of the client with the given id.
func (e *Engine) Client(id string) (models.Client, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := e.clientIndex(id)
	if i < 0 {
		return models.Client{}, false
	}
	return e.state.Clients[i].Clone(), true
}

// Premium reports whether the current user has an active subscription.
func (e *Engine) Premium() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Premium
}

// Loading reports whether a Load is in progress.
func (e *Engine) Loading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

// UserID returns the id of the current user, or the guest id.
func (e *Engine) UserID() int64 { return e.resolver.CurrentID() }

// Resolver returns the identity resolver the engine was built with.
func (e *Engine) Resolver() *identity.Resolver { return e.resolver }

// Reset discards the snapshot and the profile cache.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.state = State{}
	e.mu.Unlock()
	e.resolver.SetProfiles(nil)
}

func (e *Engine) setLoading(v bool) {
	e.mu.Lock()
	e.loading = v
	e.mu.Unlock()
}

// index helpers expect e.mu to be held.

func (e *Engine) projectIndex(id string) int {
	return slices.IndexFunc(e.state.Projects, func(p models.Project) bool { return p.ID == id })
}

func (e *Engine) taskIndex(id string) int {
	return slices.IndexFunc(e.state.Tasks, func(t models.Task) bool { return t.ID == id })
}

func (e *Engine) clientIndex(id string) int {
	return slices.IndexFunc(e.state.Clients, func(c models.Client) bool { return c.ID == id })
}

// member resolves a membership for display.
func (e *Engine) member(userID int64, role models.Role) models.Member {
	info, ok := e.resolver.UserInfo(userID)
	if !ok {
		return models.Member{UserID: userID, Name: identity.Fallback(userID), Role: role}
	}
	return models.Member{UserID: userID, Name: info.Name, Avatar: info.Avatar, Role: role}
}
