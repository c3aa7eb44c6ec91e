package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", "secret", time.Second, logging.Nop{}, WithRetries(2, time.Millisecond))
	return c, &calls
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", ` {"a":1} `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"fence with prose", "Here you go:\n```json\n{\"a\":1}\n```\nEnjoy", `{"a":1}`},
		{"single line fence", "```{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestParseTask_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/parse-task", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ParseTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "logo for Acme by friday", req.Text)
		assert.Equal(t, []string{"Acme"}, req.Clients)
		assert.Equal(t, "2025-03-10", req.CurrentDate)

		_, _ = io.WriteString(w, "```json\n"+`{"title":"Logo","client":"Acme","deadline":"2025-03-14","priority":"HIGH","subtasks":["sketch"," ","vector"]}`+"\n```")
	})

	got, err := c.ParseTask(context.Background(), ParseTaskRequest{
		Text:        "logo for Acme by friday",
		Clients:     []string{"Acme"},
		CurrentDate: "2025-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "Logo", got.Title)
	require.NotNil(t, got.Client)
	assert.Equal(t, "Acme", *got.Client)
	require.NotNil(t, got.Deadline)
	assert.Equal(t, "2025-03-14", *got.Deadline)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"sketch", "vector"}, got.Subtasks)

	project := "p1"
	d := got.Draft(&project)
	assert.Equal(t, "Logo", d.Title)
	assert.Equal(t, models.StatusInProgress, d.Status)
	assert.Equal(t, &project, d.ProjectID)
	require.Len(t, d.Subtasks, 2)
	assert.Equal(t, "sketch", d.Subtasks[0].Title)
}

func TestParseTask_DropsBadDeadlineAndNullClient(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"title":"Call","client":"null","deadline":"next week","priority":"whatever"}`)
	})

	got, err := c.ParseTask(context.Background(), ParseTaskRequest{Text: "call"})
	require.NoError(t, err)
	assert.Nil(t, got.Client)
	assert.Nil(t, got.Deadline)
	assert.Equal(t, models.PriorityMedium, got.Priority)
	assert.Empty(t, got.Subtasks)
}

func TestParseTask_Malformed(t *testing.T) {
	for name, body := range map[string]string{
		"not json":      "I could not do that",
		"missing title": `{"title":"  "}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			_, err := c.ParseTask(context.Background(), ParseTaskRequest{Text: "x"})
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestPost_RetriesTransientStatus(t *testing.T) {
	var n int32
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `["a","b"]`)
	})

	got, err := c.GenerateSubtasks(context.Background(), "task", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestPost_GivesUpAfterRetries(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.GenerateSubtasks(context.Background(), "task", "en")
	assert.ErrorIs(t, err, common.ErrUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestPost_ClientErrorNotRetried(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"text is required"}`)
	})

	_, err := c.ParseTask(context.Background(), ParseTaskRequest{})
	require.ErrorIs(t, err, ErrService)
	assert.Contains(t, err.Error(), "text is required")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestPost_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "", time.Second, logging.Nop{}, WithRetries(1, time.Millisecond))
	_, err := c.EstimateCost(context.Background(), EstimateRequest{})
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestGenerateSubtasks_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr error
	}{
		{"object", `{"subtasks":["one","two"]}`, []string{"one", "two"}, nil},
		{"fenced array", "```json\n[\"one\"]\n```", []string{"one"}, nil},
		{"error payload", `{"error":"quota"}`, nil, ErrService},
		{"empty object", `{}`, nil, ErrMalformedResponse},
		{"broken array", `["one",`, nil, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var req subtasksRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "Landing page", req.Title)
				assert.Equal(t, "ru", req.Language)
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := c.GenerateSubtasks(context.Background(), "Landing page", "ru")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimateCost(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/estimate-cost", r.URL.Path)
		var req EstimateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 40.0, req.HourlyRate)
		_, _ = io.WriteString(w, `{"minPrice":400,"maxPrice":800,"currency":"USD","minHours":10,"maxHours":20,"complexity":"medium","explanation":"two pages"}`)
	})

	got, err := c.EstimateCost(context.Background(), EstimateRequest{
		ProjectType: "website",
		Description: "two pages",
		HourlyRate:  40,
		Experience:  "middle",
		Language:    "en",
	})
	require.NoError(t, err)
	assert.Equal(t, Estimate{
		MinPrice:    400,
		MaxPrice:    800,
		Currency:    "USD",
		MinHours:    10,
		MaxHours:    20,
		Complexity:  "medium",
		Explanation: "two pages",
	}, got)
}

func TestEstimateCost_InvertedRange(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"minPrice":800,"maxPrice":400}`)
	})
	_, err := c.EstimateCost(context.Background(), EstimateRequest{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "en"))
	assert.Equal(t, messages["en"]["malformed"], UserMessage(ErrMalformedResponse, "en"))
	assert.Equal(t, messages["ru"]["service"], UserMessage(errors.Join(errors.New("x"), ErrService), "RU"))
	assert.Equal(t, messages["en"]["unavailable"], UserMessage(context.DeadlineExceeded, "de"))
	assert.Equal(t, messages["ru"]["unavailable"], UserMessage(common.ErrUnavailable, "ru"))
	assert.Equal(t, messages["en"]["unknown"], UserMessage(errors.New("boom"), "en"))
}
