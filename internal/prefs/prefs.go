// Package prefs keeps the theme, language and custom task statuses on the
// device, independent of the remote store.
//
// Values are read once by Load (saved choice, then host hint, then default)
// and written through on every change. Storage failures never panic: reads
// fall back to the next source, writes are logged and returned.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

type Language string

const (
	LanguageEN Language = "en"
	LanguageRU Language = "ru"
)

func (l Language) Valid() bool { return l == LanguageEN || l == LanguageRU }

// Storage keys.
const (
	keyTheme    = "prefs.theme"
	keyLanguage = "prefs.language"
	keyStatuses = "prefs.custom_statuses"
)

var (
	ErrInvalidTheme    = errors.New("unknown theme")
	ErrInvalidLanguage = errors.New("unknown language")
	ErrInvalidStatus   = errors.New("invalid custom status")
)

// Preferences is the current set of choices.
type Preferences struct {
	Theme          Theme
	Language       Language
	CustomStatuses []models.Status
}

func (p Preferences) clone() Preferences {
	p.CustomStatuses = slices.Clone(p.CustomStatuses)
	if p.CustomStatuses == nil {
		p.CustomStatuses = []models.Status{}
	}
	return p
}

// Defaults are used when neither storage nor host has an opinion.
func Defaults() Preferences {
	return Preferences{Theme: ThemeLight, Language: LanguageEN, CustomStatuses: []models.Status{}}
}

// Backend is the key/value storage behind the store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Hints are the host-provided theme and locale.
type Hints struct {
	ColorScheme  string
	LanguageCode string
}

// Store holds the preferences in memory and writes them through to Backend.
// A nil Backend means storage is unavailable.
type Store struct {
	backend Backend
	logger  logging.Logger

	mu    sync.RWMutex
	prefs Preferences
}

func New(backend Backend, logger logging.Logger) *Store {
	return &Store{backend: backend, logger: logger, prefs: Defaults()}
}

// Load resolves every preference and returns the result.
func (s *Store) Load(ctx context.Context, hints Hints) Preferences {
	p := Defaults()

	if t := Theme(s.read(ctx, keyTheme)); t.Valid() {
		p.Theme = t
	} else if t := themeHint(hints.ColorScheme); t != "" {
		p.Theme = t
	}

	if l := Language(s.read(ctx, keyLanguage)); l.Valid() {
		p.Language = l
	} else if l := languageHint(hints.LanguageCode); l != "" {
		p.Language = l
	}

	if raw := s.read(ctx, keyStatuses); raw != "" {
		var statuses []models.Status
		if err := json.Unmarshal([]byte(raw), &statuses); err != nil {
			s.logger.Warn(ctx, "corrupt custom statuses ignored", "err", err)
		} else {
			p.CustomStatuses = normalizeStatuses(statuses)
		}
	}

	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()
	return p.clone()
}

// Current returns the preferences as last loaded or changed.
func (s *Store) Current() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.clone()
}

func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if !t.Valid() {
		return ErrInvalidTheme
	}
	s.mu.Lock()
	s.prefs.Theme = t
	s.mu.Unlock()
	return s.write(ctx, keyTheme, []byte(t))
}

// ToggleTheme switches between light and dark.
func (s *Store) ToggleTheme(ctx context.Context) (Theme, error) {
	next := ThemeDark
	if s.Current().Theme == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(ctx, next)
}

func (s *Store) SetLanguage(ctx context.Context, l Language) error {
	if !l.Valid() {
		return ErrInvalidLanguage
	}
	s.mu.Lock()
	s.prefs.Language = l
	s.mu.Unlock()
	return s.write(ctx, keyLanguage, []byte(l))
}

// AddCustomStatus registers a user-defined task status. Built-ins and
// duplicates are rejected.
func (s *Store) AddCustomStatus(ctx context.Context, name string) error {
	st := models.Status(strings.TrimSpace(name))
	if st == "" || st.Builtin() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	if slices.Contains(s.prefs.CustomStatuses, st) {
		s.mu.Unlock()
		return nil
	}
	s.prefs.CustomStatuses = append(s.prefs.CustomStatuses, st)
	statuses := slices.Clone(s.prefs.CustomStatuses)
	s.mu.Unlock()

	return s.writeStatuses(ctx, statuses)
}

// RemoveCustomStatus forgets a custom status. Tasks already carrying it keep
// it.
func (s *Store) RemoveCustomStatus(ctx context.Context, name string) error {
	st := models.Status(strings.TrimSpace(name))

	s.mu.Lock()
	i := slices.Index(s.prefs.CustomStatuses, st)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.prefs.CustomStatuses = slices.Delete(s.prefs.CustomStatuses, i, i+1)
	statuses := slices.Clone(s.prefs.CustomStatuses)
	s.mu.Unlock()

	return s.writeStatuses(ctx, statuses)
}

func (s *Store) writeStatuses(ctx context.Context, statuses []models.Status) error {
	if statuses == nil {
		statuses = []models.Status{}
	}
	b, err := json.Marshal(statuses)
	if err != nil {
		return err
	}
	return s.write(ctx, keyStatuses, b)
}

func (s *Store) read(ctx context.Context, key string) string {
	if s.backend == nil {
		return ""
	}
	b, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "preference read failed", "key", key, "err", err)
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (s *Store) write(ctx context.Context, key string, value []byte) error {
	if s.backend == nil {
		s.logger.Warn(ctx, "preference not persisted, storage unavailable", "key", key)
		return common.ErrUnavailable
	}
	if err := s.backend.Set(ctx, key, value); err != nil {
		s.logger.Error(ctx, "preference write failed", "key", key, "err", err)
		return err
	}
	return nil
}

func themeHint(scheme string) Theme {
	t := Theme(strings.ToLower(strings.TrimSpace(scheme)))
	if t.Valid() {
		return t
	}
	return ""
}

// languageHint maps an IETF tag such as "ru-RU" to a supported language.
func languageHint(code string) Language {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	if l := Language(code); l.Valid() {
		return l
	}
	return ""
}

func normalizeStatuses(in []models.Status) []models.Status {
	out := make([]models.Status, 0, len(in))
	for _, st := range in {
		st = models.Status(strings.TrimSpace(string(st)))
		if st == "" || st.Builtin() || slices.Contains(out, st) {
			continue
		}
		out = append(out, st)
	}
	return out
}
