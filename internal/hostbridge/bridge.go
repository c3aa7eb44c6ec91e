// Package hostbridge abstracts the Mini App host: lifecycle calls, the user
// descriptor, color scheme, haptic feedback and the back button.
//
// Two sources can describe the launching user: the host's signed init data
// (see ParseInitData) and a launcher-issued JWT (see ParseLaunchToken). When
// neither is present the Standalone bridge is used and every call is a no-op.
package hostbridge

import "strings"

// User is the host-provided user descriptor.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// DisplayName joins first and last name, falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		name = u.Username
	}
	return name
}

// HapticKind selects a feedback pattern.
type HapticKind string

const (
	HapticLight   HapticKind = "light"
	HapticMedium  HapticKind = "medium"
	HapticSuccess HapticKind = "success"
	HapticError   HapticKind = "error"
)

// Bridge is what the client needs from the host environment.
type Bridge interface {
	Ready()
	Expand()
	User() *User
	ColorScheme() string
	LanguageCode() string
	StartParam() string
	Haptic(kind HapticKind)
	SetBackButton(visible bool, onBack func())
	Back()
}

// Standalone is the bridge used when no host is present.
type Standalone struct{}

func (Standalone) Ready() {}
func (Standalone) Expand() {}
func (Standalone) User() *User { return nil }
func (Standalone) ColorScheme() string { return "" }
func (Standalone) LanguageCode() string { return "" }
func (Standalone) StartParam() string { return "" }
func (Standalone) Haptic(HapticKind) {}
func (Standalone) SetBackButton(bool, func()) {}
func (Standalone) Back() {}
