package hostbridge

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// Session is a Bridge backed by a validated Launch. Lifecycle calls and
// haptics have no host to reach from a terminal, so they are recorded and
// logged at debug level.
type Session struct {
	launch Launch
	logger logging.Logger

	mu          sync.Mutex
	ready       bool
	expanded    bool
	backVisible bool
	onBack      func()
	haptics     []HapticKind
}

func NewSession(launch Launch, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Session{launch: launch, logger: logger}
}

func (s *Session) Ready() {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	s.logger.Debug(context.Background(), "host ready")
}

func (s *Session) Expand() {
	s.mu.Lock()
	s.expanded = true
	s.mu.Unlock()
	s.logger.Debug(context.Background(), "host expand")
}

func (s *Session) User() *User {
	if s.launch.User == nil {
		return nil
	}
	u := *s.launch.User
	return &u
}

func (s *Session) ColorScheme() string { return s.launch.ColorScheme }

func (s *Session) StartParam() string { return s.launch.StartParam }

func (s *Session) LanguageCode() string {
	if s.launch.User == nil {
		return ""
	}
	return s.launch.User.LanguageCode
}

func (s *Session) Haptic(kind HapticKind) {
	s.mu.Lock()
	s.haptics = append(s.haptics, kind)
	s.mu.Unlock()
	s.logger.Debug(context.Background(), "haptic", "kind", kind)
}

// SetBackButton shows or hides the back button. onBack replaces the previous
// handler; a hidden button drops it.
func (s *Session) SetBackButton(visible bool, onBack func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backVisible = visible
	if visible {
		s.onBack = onBack
	} else {
		s.onBack = nil
	}
}

// Back simulates a press on the back button.
func (s *Session) Back() {
	s.mu.Lock()
	fn := s.onBack
	visible := s.backVisible
	s.mu.Unlock()
	if visible && fn != nil {
		fn()
	}
}

// Haptics returns the feedback requested so far.
func (s *Session) Haptics() []HapticKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HapticKind(nil), s.haptics...)
}

// State reports the lifecycle flags.
func (s *Session) State() (ready, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready, s.expanded
}
