package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/taskkeeper/internal/identity"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// Load fetches everything visible to the current user and replaces the
// snapshot in one step. A failing fetch is logged and the load continues
// with what is available; the joined fetch errors are returned after the
// snapshot has been replaced.
func (e *Engine) Load(ctx context.Context) error {
	e.setLoading(true)
	defer e.setLoading(false)

	uid := e.resolver.CurrentID()
	log := e.logger.With("op", "load", "user_id", uid)
	var errs []error
	fail := func(step string, err error) {
		log.Error(ctx, "load step failed", "step", step, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", step, err))
	}

	if p, ok := e.resolver.HostProfile(); ok {
		if err := e.store.Profiles().Upsert(ctx, p); err != nil {
			log.Warn(ctx, "profile sync failed", "err", err)
		}
	}

	byID := make(map[string]models.Project)
	var order []string
	collect := func(projects []models.Project) {
		for _, p := range projects {
			if _, seen := byID[p.ID]; !seen {
				order = append(order, p.ID)
			}
			byID[p.ID] = p
		}
	}

	owned, err := e.store.Projects().ListByOwner(ctx, uid)
	if err != nil {
		fail("owned projects", err)
	}
	collect(owned)

	own, err := e.store.Members().ListByUser(ctx, uid)
	if err != nil {
		fail("memberships", err)
	}
	var sharedIDs []string
	for _, m := range own {
		if !slices.Contains(sharedIDs, m.ProjectID) {
			sharedIDs = append(sharedIDs, m.ProjectID)
		}
	}
	if len(sharedIDs) > 0 {
		shared, err := e.store.Projects().ListByIDs(ctx, sharedIDs)
		if err != nil {
			fail("shared projects", err)
		}
		collect(shared)
	}

	var rows []models.Membership
	if len(order) > 0 {
		all, err := e.store.Members().ListByProjects(ctx, order)
		if err != nil {
			fail("project members", err)
		}
		for _, m := range all {
			if m.UserID != identity.GuestUserID {
				rows = append(rows, m)
			}
		}
	}

	userIDs := profileIDs(uid, order, byID, rows)
	if len(userIDs) > 0 {
		profiles, err := e.store.Profiles().ListByIDs(ctx, userIDs)
		if err != nil {
			fail("profiles", err)
		} else {
			e.resolver.SetProfiles(profiles)
		}
	}

	clients, err := e.store.Clients().ListByUser(ctx, uid)
	if err != nil {
		fail("clients", err)
	}

	taskRows, err := e.store.Tasks().ListForUser(ctx, uid, order)
	if err != nil {
		fail("tasks", err)
	}

	next := State{
		Projects: make([]models.Project, 0, len(order)),
		Tasks:    make([]models.Task, 0, len(taskRows)),
		Clients:  make([]models.Client, 0, len(clients)),
	}
	for _, id := range order {
		p := byID[id]
		p.Members = e.assembleMembers(p, rows)
		next.Projects = append(next.Projects, p)
	}
	for _, row := range taskRows {
		next.Tasks = append(next.Tasks, row.Decode())
	}
	next.Clients = append(next.Clients, clients...)
	if profile, ok := e.resolver.Profile(uid); ok && uid != identity.GuestUserID {
		next.Premium = profile.PremiumAt(e.now())
	}

	e.mu.Lock()
	e.state = next
	e.mu.Unlock()

	log.Info(ctx, "state loaded",
		"projects", len(next.Projects), "tasks", len(next.Tasks), "clients", len(next.Clients), "failed_steps", len(errs))
	return errors.Join(errs...)
}

// profileIDs lists the distinct users whose profiles are needed: members,
// project owners and the current user.
func profileIDs(uid int64, order []string, byID map[string]models.Project, rows []models.Membership) []int64 {
	var ids []int64
	add := func(id int64) {
		if id != identity.GuestUserID && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	add(uid)
	for _, id := range order {
		add(byID[id].OwnerID)
	}
	for _, m := range rows {
		add(m.UserID)
	}
	return ids
}

// assembleMembers resolves the membership rows of p. The creating user is
// the one owner; it is synthesized when its row is missing.
func (e *Engine) assembleMembers(p models.Project, rows []models.Membership) []models.Member {
	members := make([]models.Member, 0)
	hasOwner := false
	for _, m := range rows {
		if m.ProjectID != p.ID {
			continue
		}
		role := models.RoleMember
		if m.UserID == p.OwnerID {
			if hasOwner {
				continue
			}
			role = models.RoleOwner
			hasOwner = true
		}
		members = append(members, e.member(m.UserID, role))
	}
	if !hasOwner {
		members = append([]models.Member{e.member(p.OwnerID, models.RoleOwner)}, members...)
	}
	return members
}
