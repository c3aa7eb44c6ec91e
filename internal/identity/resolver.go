// Package identity derives the active user's id from the host descriptor and
// resolves display data for any user id.
package identity

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/hostbridge"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// GuestUserID is the sentinel identity of the standalone (offline) mode.
// Membership rows carrying it are placeholders and are ignored.
const GuestUserID int64 = 0

// UserID returns the host user's id, or GuestUserID when there is no usable
// descriptor.
func UserID(host *hostbridge.User) int64 {
	if host == nil || host.ID <= 0 {
		return GuestUserID
	}
	return host.ID
}

// Info is what the UI needs to render a user.
type Info struct {
	ID     int64
	Name   string
	Avatar string
}

// Resolver resolves user display data. The current user always comes from the
// live host descriptor; everyone else from the profile cache filled by the
// last full load.
type Resolver struct {
	host *hostbridge.User

	mu       sync.RWMutex
	profiles map[int64]models.Profile
}

func NewResolver(host *hostbridge.User) *Resolver {
	var h *hostbridge.User
	if host != nil {
		u := *host
		h = &u
	}
	return &Resolver{host: h, profiles: map[int64]models.Profile{}}
}

// CurrentID is the active user's id.
func (r *Resolver) CurrentID() int64 {
	return UserID(r.host)
}

// Guest reports whether the resolver runs without a host identity.
func (r *Resolver) Guest() bool {
	return r.CurrentID() == GuestUserID
}

// SetProfiles replaces the profile cache.
func (r *Resolver) SetProfiles(profiles []models.Profile) {
	m := make(map[int64]models.Profile, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	r.mu.Lock()
	r.profiles = m
	r.mu.Unlock()
}

// Profile returns the cached profile of id.
func (r *Resolver) Profile(id int64) (models.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	return p, ok
}

// UserInfo resolves id. The second result is false when nothing is known, in
// which case callers should render the user by id.
func (r *Resolver) UserInfo(id int64) (Info, bool) {
	if r.host != nil && id == r.CurrentID() && id != GuestUserID {
		return Info{ID: id, Name: hostName(*r.host), Avatar: r.host.PhotoURL}, true
	}

	p, ok := r.Profile(id)
	if !ok {
		return Info{}, false
	}
	return Info{ID: id, Name: p.Name, Avatar: p.AvatarURL}, true
}

// HostProfile is the profile record synced for the current user, or false in
// guest mode.
func (r *Resolver) HostProfile() (models.Profile, bool) {
	if r.host == nil || r.Guest() {
		return models.Profile{}, false
	}
	return models.Profile{ID: r.host.ID, Name: hostName(*r.host), AvatarURL: r.host.PhotoURL}, true
}

// Fallback is the label of a user that could not be resolved.
func Fallback(id int64) string {
	return fmt.Sprintf("User %d", id)
}

func hostName(u hostbridge.User) string {
	if name := u.DisplayName(); name != "" {
		return name
	}
	return Fallback(u.ID)
}
