package cli

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/config"
	"github.com/dmitrijs2005/taskkeeper/internal/hostbridge"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBridge(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	v := url.Values{}
	v.Set("auth_date", strconv.FormatInt(now.Unix(), 10))
	v.Set("user", `{"id":42,"first_name":"Ada"}`)
	v.Set("start_param", "invite_p1")
	initData := hostbridge.SignInitData(v, "bot")

	token, err := hostbridge.IssueLaunchToken(hostbridge.User{ID: 7, FirstName: "Lin"}, "dark", []byte("s3cret"), time.Hour)
	require.NoError(t, err)

	t.Run("init data wins", func(t *testing.T) {
		cfg := &config.Config{InitData: initData, BotToken: "bot", InitDataMaxAge: time.Hour, LaunchToken: token, LaunchSecret: "s3cret"}
		b, err := SelectBridge(ctx, cfg, logging.Nop{}, now)
		require.NoError(t, err)
		require.NotNil(t, b.User())
		assert.Equal(t, int64(42), b.User().ID)
		assert.Equal(t, "invite_p1", b.StartParam())
	})

	t.Run("launch token", func(t *testing.T) {
		cfg := &config.Config{LaunchToken: token, LaunchSecret: "s3cret"}
		b, err := SelectBridge(ctx, cfg, logging.Nop{}, now)
		require.NoError(t, err)
		require.NotNil(t, b.User())
		assert.Equal(t, int64(7), b.User().ID)
		assert.Equal(t, "dark", b.ColorScheme())
	})

	t.Run("standalone", func(t *testing.T) {
		b, err := SelectBridge(ctx, &config.Config{}, logging.Nop{}, now)
		require.NoError(t, err)
		assert.IsType(t, hostbridge.Standalone{}, b)
		assert.Nil(t, b.User())
	})

	t.Run("bad init data", func(t *testing.T) {
		cfg := &config.Config{InitData: initData, BotToken: "other"}
		_, err := SelectBridge(ctx, cfg, logging.Nop{}, now)
		assert.ErrorIs(t, err, hostbridge.ErrInvalidInitData)
	})

	t.Run("bad launch token", func(t *testing.T) {
		cfg := &config.Config{LaunchToken: token, LaunchSecret: "wrong"}
		_, err := SelectBridge(ctx, cfg, logging.Nop{}, now)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})
}

func TestMatchID(t *testing.T) {
	ids := []string{"abc123", "abd456", "x"}
	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{"abc123", "abc123", ""},
		{"abc", "abc123", ""},
		{"x", "x", ""},
		{"ab", "", `ambiguous task "ab"`},
		{"zzz", "", `unknown task "zzz"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := matchID("task", tt.in, ids)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsInteractive(t *testing.T) {
	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })

	isTerminal = func(int) bool { return true }
	assert.True(t, IsInteractive(nil))
	isTerminal = func(int) bool { return false }
	assert.False(t, IsInteractive(nil))
}

func TestAsk_Interactive(t *testing.T) {
	h := newHarness(t, "answer", nil)
	h.app.interactive = true

	got, err := h.app.ask("Question")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.Equal(t, "Question\n> ", h.out.String())

	_, err = h.app.ask("Again")
	require.Error(t, err)
}

func TestRunREPL_InteractivePrompt(t *testing.T) {
	h := newHarness(t, "exit\n", nil)
	h.app.interactive = true
	h.app.runREPL(context.Background())
	assert.True(t, bytes.HasPrefix(h.out.Bytes(), []byte("tk > ")), h.out.String())
}
