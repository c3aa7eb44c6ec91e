package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/localdb"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapBackend struct {
	values  map[string][]byte
	readErr error
	setErr  error
}

func newMapBackend() *mapBackend { return &mapBackend{values: map[string][]byte{}} }

func (m *mapBackend) Get(_ context.Context, key string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.values[key], nil
}

func (m *mapBackend) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func TestLoad_Priority(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		saved map[string]string
		hints Hints
		theme Theme
		lang  Language
	}{
		{name: "defaults", theme: ThemeLight, lang: LanguageEN},
		{name: "host hints", hints: Hints{ColorScheme: "dark", LanguageCode: "ru-RU"}, theme: ThemeDark, lang: LanguageRU},
		{name: "unsupported hints", hints: Hints{ColorScheme: "sepia", LanguageCode: "de"}, theme: ThemeLight, lang: LanguageEN},
		{
			name:  "saved wins over hints",
			saved: map[string]string{keyTheme: "light", keyLanguage: "en"},
			hints: Hints{ColorScheme: "dark", LanguageCode: "ru"},
			theme: ThemeLight,
			lang:  LanguageEN,
		},
		{
			name:  "corrupt saved value falls back to hint",
			saved: map[string]string{keyTheme: "neon", keyLanguage: "xx"},
			hints: Hints{ColorScheme: "dark", LanguageCode: "ru"},
			theme: ThemeDark,
			lang:  LanguageRU,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newMapBackend()
			for k, v := range tt.saved {
				b.values[k] = []byte(v)
			}
			p := New(b, logging.Nop{}).Load(ctx, tt.hints)
			assert.Equal(t, tt.theme, p.Theme)
			assert.Equal(t, tt.lang, p.Language)
			assert.NotNil(t, p.CustomStatuses)
		})
	}
}

func TestLoad_BackendFailureDegrades(t *testing.T) {
	b := newMapBackend()
	b.readErr = errors.New("disk gone")

	p := New(b, logging.Nop{}).Load(context.Background(), Hints{ColorScheme: "dark"})
	assert.Equal(t, ThemeDark, p.Theme)
	assert.Equal(t, LanguageEN, p.Language)
}

func TestLoad_NilBackend(t *testing.T) {
	s := New(nil, logging.Nop{})
	p := s.Load(context.Background(), Hints{})
	assert.Equal(t, Defaults(), p)

	err := s.SetTheme(context.Background(), ThemeDark)
	require.ErrorIs(t, err, common.ErrUnavailable)
	assert.Equal(t, ThemeDark, s.Current().Theme, "in-memory choice still applies")
}

func TestLoad_CorruptStatuses(t *testing.T) {
	b := newMapBackend()
	b.values[keyStatuses] = []byte("{not json")

	p := New(b, logging.Nop{}).Load(context.Background(), Hints{})
	assert.Empty(t, p.CustomStatuses)
}

func TestSetters_WriteThrough(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()
	s := New(b, logging.Nop{})

	require.NoError(t, s.SetTheme(ctx, ThemeDark))
	require.NoError(t, s.SetLanguage(ctx, LanguageRU))
	assert.Equal(t, "dark", string(b.values[keyTheme]))
	assert.Equal(t, "ru", string(b.values[keyLanguage]))

	require.ErrorIs(t, s.SetTheme(ctx, "neon"), ErrInvalidTheme)
	require.ErrorIs(t, s.SetLanguage(ctx, "xx"), ErrInvalidLanguage)

	next, err := s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)

	reloaded := New(b, logging.Nop{}).Load(ctx, Hints{ColorScheme: "dark"})
	assert.Equal(t, ThemeLight, reloaded.Theme)
	assert.Equal(t, LanguageRU, reloaded.Language)
}

func TestSetters_WriteFailureReturned(t *testing.T) {
	b := newMapBackend()
	b.setErr = errors.New("quota")
	s := New(b, logging.Nop{})

	require.EqualError(t, s.SetLanguage(context.Background(), LanguageRU), "quota")
	require.EqualError(t, s.AddCustomStatus(context.Background(), "review"), "quota")
}

func TestCustomStatuses(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()
	s := New(b, logging.Nop{})

	require.NoError(t, s.AddCustomStatus(ctx, " review "))
	require.NoError(t, s.AddCustomStatus(ctx, "review"))
	require.NoError(t, s.AddCustomStatus(ctx, "blocked"))
	require.ErrorIs(t, s.AddCustomStatus(ctx, "completed"), ErrInvalidStatus)
	require.ErrorIs(t, s.AddCustomStatus(ctx, " "), ErrInvalidStatus)

	assert.Equal(t, []models.Status{"review", "blocked"}, s.Current().CustomStatuses)
	assert.JSONEq(t, `["review","blocked"]`, string(b.values[keyStatuses]))

	require.NoError(t, s.RemoveCustomStatus(ctx, "review"))
	require.NoError(t, s.RemoveCustomStatus(ctx, "missing"))

	p := New(b, logging.Nop{}).Load(ctx, Hints{})
	assert.Equal(t, []models.Status{"blocked"}, p.CustomStatuses)
	assert.True(t, models.Status("blocked").Valid(p.CustomStatuses))
}

func TestStore_WithSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	db, err := localdb.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	s := New(db.Metadata, logging.Nop{})
	require.NoError(t, s.SetTheme(ctx, ThemeDark))
	require.NoError(t, s.AddCustomStatus(ctx, "review"))

	p := New(db.Metadata, logging.Nop{}).Load(ctx, Hints{})
	assert.Equal(t, ThemeDark, p.Theme)
	assert.Equal(t, []models.Status{"review"}, p.CustomStatuses)
}
