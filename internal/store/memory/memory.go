// Package memory implements store.Store in process memory. It backs the
// offline mode and engine tests and mirrors the PostgreSQL semantics:
// server-assigned uuid ids and a unique (project, user) membership.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/store"
	"github.com/google/uuid"
)

// Store is a mutex-guarded in-memory store.
type Store struct {
	mu       sync.RWMutex
	projects []models.Project
	members  []models.Membership
	profiles map[int64]models.Profile
	clients  []models.Client
	tasks    []models.TaskRow

	newID func() string
	// failures injects errors per operation name, e.g. "tasks.insert".
	failures map[string]error
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		profiles: make(map[int64]models.Profile),
		newID:    uuid.NewString,
		failures: make(map[string]error),
	}
}

// Fail makes every subsequent call of op return err; a nil err clears it.
// Operation names are "<table>.<method>" in lower case, e.g.
// "members.insert" or "projects.listbyowner".
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

// SetPremium sets a user's subscription expiry, as the payment backend would.
func (s *Store) SetPremium(userID int64, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profiles[userID]
	p.ID = userID
	p.PremiumUntil = &until
	s.profiles[userID] = p
}

// SeedTask stores a raw task row as is, keeping its id and serialized
// subtasks.
func (s *Store) SeedTask(row models.TaskRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, row)
}

func (s *Store) Projects() store.ProjectRepository { return projectRepo{s} }
func (s *Store) Members() store.MemberRepository { return memberRepo{s} }
func (s *Store) Profiles() store.ProfileRepository { return profileRepo{s} }
func (s *Store) Clients() store.ClientRepository { return clientRepo{s} }
func (s *Store) Tasks() store.TaskRepository { return taskRepo{s} }

// DeleteUserData removes everything owned by userID.
func (s *Store) DeleteUserData(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("store.deleteuserdata"); err != nil {
		return err
	}

	owned := make(map[string]bool)
	for _, p := range s.projects {
		if p.OwnerID == userID {
			owned[p.ID] = true
		}
	}
	s.tasks = slices.DeleteFunc(s.tasks, func(t models.TaskRow) bool {
		return t.UserID == userID || (t.ProjectID != nil && owned[*t.ProjectID])
	})
	s.members = slices.DeleteFunc(s.members, func(m models.Membership) bool {
		return m.UserID == userID || owned[m.ProjectID]
	})
	s.projects = slices.DeleteFunc(s.projects, func(p models.Project) bool { return owned[p.ID] })
	s.clients = slices.DeleteFunc(s.clients, func(c models.Client) bool { return c.UserID == userID })
	delete(s.profiles, userID)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

type projectRepo struct{ s *Store }

func (r projectRepo) ListByOwner(_ context.Context, ownerID int64) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("projects.listbyowner"); err != nil {
		return nil, err
	}
	out := make([]models.Project, 0)
	for _, p := range r.s.projects {
		if p.OwnerID == ownerID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r projectRepo) ListByIDs(_ context.Context, ids []string) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("projects.listbyids"); err != nil {
		return nil, err
	}
	out := make([]models.Project, 0)
	for _, p := range r.s.projects {
		if slices.Contains(ids, p.ID) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r projectRepo) Insert(_ context.Context, p models.Project) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("projects.insert"); err != nil {
		return "", err
	}
	row := p.Clone()
	row.ID = r.s.newID()
	row.Members = nil
	r.s.projects = append(r.s.projects, row)
	return row.ID, nil
}

func (r projectRepo) Update(_ context.Context, id string, patch models.ProjectPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("projects.update"); err != nil {
		return err
	}
	i := slices.IndexFunc(r.s.projects, func(p models.Project) bool { return p.ID == id })
	if i < 0 {
		return common.ErrNotFound
	}
	patch.Apply(&r.s.projects[i])
	return nil
}

func (r projectRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("projects.delete"); err != nil {
		return err
	}
	n := len(r.s.projects)
	r.s.projects = slices.DeleteFunc(r.s.projects, func(p models.Project) bool { return p.ID == id })
	if len(r.s.projects) == n {
		return common.ErrNotFound
	}
	r.s.members = slices.DeleteFunc(r.s.members, func(m models.Membership) bool { return m.ProjectID == id })
	return nil
}

type memberRepo struct{ s *Store }

func (r memberRepo) ListByUser(_ context.Context, userID int64) ([]models.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("members.listbyuser"); err != nil {
		return nil, err
	}
	out := make([]models.Membership, 0)
	for _, m := range r.s.members {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memberRepo) ListByProjects(_ context.Context, projectIDs []string) ([]models.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("members.listbyprojects"); err != nil {
		return nil, err
	}
	out := make([]models.Membership, 0)
	for _, m := range r.s.members {
		if slices.Contains(projectIDs, m.ProjectID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memberRepo) Insert(_ context.Context, m models.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("members.insert"); err != nil {
		return err
	}
	if !slices.ContainsFunc(r.s.projects, func(p models.Project) bool { return p.ID == m.ProjectID }) {
		return common.ErrNotFound
	}
	if slices.ContainsFunc(r.s.members, func(x models.Membership) bool {
		return x.ProjectID == m.ProjectID && x.UserID == m.UserID
	}) {
		return common.ErrAlreadyExists
	}
	r.s.members = append(r.s.members, m)
	return nil
}

func (r memberRepo) Delete(_ context.Context, projectID string, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("members.delete"); err != nil {
		return err
	}
	n := len(r.s.members)
	r.s.members = slices.DeleteFunc(r.s.members, func(m models.Membership) bool {
		return m.ProjectID == projectID && m.UserID == userID
	})
	if len(r.s.members) == n {
		return common.ErrNotFound
	}
	return nil
}

type profileRepo struct{ s *Store }

func (r profileRepo) ListByIDs(_ context.Context, ids []int64) ([]models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("profiles.listbyids"); err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r profileRepo) Upsert(_ context.Context, p models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("profiles.upsert"); err != nil {
		return err
	}
	cur := r.s.profiles[p.ID]
	cur.ID = p.ID
	cur.Name = p.Name
	cur.AvatarURL = p.AvatarURL
	r.s.profiles[p.ID] = cur
	return nil
}

type clientRepo struct{ s *Store }

func (r clientRepo) ListByUser(_ context.Context, userID int64) ([]models.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("clients.listbyuser"); err != nil {
		return nil, err
	}
	out := make([]models.Client, 0)
	for _, c := range r.s.clients {
		if c.UserID == userID {
			out = append(out, c.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b models.Client) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out, nil
}

func (r clientRepo) Insert(_ context.Context, c models.Client) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("clients.insert"); err != nil {
		return "", err
	}
	row := c.Clone()
	row.ID = r.s.newID()
	r.s.clients = append(r.s.clients, row)
	return row.ID, nil
}

func (r clientRepo) Update(_ context.Context, id string, patch models.ClientPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("clients.update"); err != nil {
		return err
	}
	i := slices.IndexFunc(r.s.clients, func(c models.Client) bool { return c.ID == id })
	if i < 0 {
		return common.ErrNotFound
	}
	patch.Apply(&r.s.clients[i])
	return nil
}

func (r clientRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("clients.delete"); err != nil {
		return err
	}
	n := len(r.s.clients)
	r.s.clients = slices.DeleteFunc(r.s.clients, func(c models.Client) bool { return c.ID == id })
	if len(r.s.clients) == n {
		return common.ErrNotFound
	}
	return nil
}

type taskRepo struct{ s *Store }

func (r taskRepo) ListForUser(_ context.Context, userID int64, projectIDs []string) ([]models.TaskRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("tasks.listforuser"); err != nil {
		return nil, err
	}
	out := make([]models.TaskRow, 0)
	for _, t := range r.s.tasks {
		if t.UserID == userID || (t.ProjectID != nil && slices.Contains(projectIDs, *t.ProjectID)) {
			out = append(out, models.TaskRow{Task: t.Clone(), RawSubtasks: t.RawSubtasks})
		}
	}
	return out, nil
}

func (r taskRepo) Insert(_ context.Context, t models.Task) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("tasks.insert"); err != nil {
		return "", err
	}
	row := models.TaskRow{Task: t.Clone(), RawSubtasks: models.EncodeSubtasks(t.Subtasks)}
	row.ID = r.s.newID()
	row.Subtasks = nil
	r.s.tasks = append(r.s.tasks, row)
	return row.ID, nil
}

func (r taskRepo) Update(_ context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("tasks.update"); err != nil {
		return err
	}
	i := slices.IndexFunc(r.s.tasks, func(t models.TaskRow) bool { return t.ID == id })
	if i < 0 {
		return common.ErrNotFound
	}
	row := &r.s.tasks[i]
	if patch.Subtasks != nil {
		row.RawSubtasks = models.EncodeSubtasks(*patch.Subtasks)
		patch.Subtasks = nil
	}
	patch.Apply(&row.Task)
	row.UpdatedAt = updatedAt
	return nil
}

func (r taskRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("tasks.delete"); err != nil {
		return err
	}
	n := len(r.s.tasks)
	r.s.tasks = slices.DeleteFunc(r.s.tasks, func(t models.TaskRow) bool { return t.ID == id })
	if len(r.s.tasks) == n {
		return common.ErrNotFound
	}
	return nil
}

func (r taskRepo) DeleteByProject(_ context.Context, projectID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("tasks.deletebyproject"); err != nil {
		return err
	}
	r.s.tasks = slices.DeleteFunc(r.s.tasks, func(t models.TaskRow) bool { return t.InProject(projectID) })
	return nil
}
