package models

import "time"

// Client is a customer of the freelancer. Contact is free text.
type Client struct {
	ID      string
	UserID  int64
	Name    string
	Contact string
	Avatar  *string
}

// ClientDraft describes a client to create.
type ClientDraft struct {
	Name    string
	Contact string
	Avatar  *string
}

// ClientPatch is a partial client update.
type ClientPatch struct {
	Name        *string
	Contact     *string
	Avatar      *string
	ClearAvatar bool
}

// Empty reports whether the patch changes nothing.
func (p ClientPatch) Empty() bool {
	return p.Name == nil && p.Contact == nil && p.Avatar == nil && !p.ClearAvatar
}

// Apply writes the set fields into dst.
func (p ClientPatch) Apply(dst *Client) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Contact != nil {
		dst.Contact = *p.Contact
	}
	if p.ClearAvatar {
		dst.Avatar = nil
	} else if p.Avatar != nil {
		dst.Avatar = cloneString(p.Avatar)
	}
}

// Clone returns a copy that shares no pointers with c.
func (c Client) Clone() Client {
	out := c
	out.Avatar = cloneString(c.Avatar)
	return out
}

// Profile is the cached public identity of a user.
type Profile struct {
	ID           int64
	Name         string
	AvatarURL    string
	PremiumUntil *time.Time
}

// PremiumAt reports whether the subscription is active at now.
func (p Profile) PremiumAt(now time.Time) bool {
	return p.PremiumUntil != nil && p.PremiumUntil.After(now)
}
