// Package ai talks to the task-parsing, subtask-generation and
// cost-estimation endpoints of the AI service.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	defaultRetries = 3
	defaultBackoff = 500 * time.Millisecond
	maxBodySize    = 1 << 20
)

var (
	// ErrMalformedResponse means the service answered with something that is
	// not the expected JSON document.
	ErrMalformedResponse = errors.New("malformed AI response")
	// ErrService means the service reported an error of its own.
	ErrService = errors.New("AI service error")
)

// Client is an HTTP JSON client of the AI service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  logging.Logger

	retries uint64
	backoff time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetries sets how many times a transient failure is retried and the
// first backoff delay.
func WithRetries(max uint64, base time.Duration) Option {
	return func(c *Client) {
		c.retries = max
		c.backoff = base
	}
}

// NewClient constructs a client for the service rooted at baseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger logging.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		retries: defaultRetries,
		backoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error string `json:"error"`
}

// post sends payload to path and returns the response body. Transport
// errors, 429 and 5xx answers are retried with exponential backoff.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + path
	log := c.logger.With("op", "ai", "path", path)
	attempt := 0

	var out []byte
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			log.Debug(ctx, "request failed", "attempt", attempt, "err", err)
			return retry.RetryableError(fmt.Errorf("%w: %v", common.ErrUnavailable, err))
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: read body: %v", common.ErrUnavailable, err))
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			log.Debug(ctx, "transient status", "attempt", attempt, "status", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("%w: status %d", common.ErrUnavailable, resp.StatusCode))
		case resp.StatusCode >= 400:
			return serviceError(resp.StatusCode, data)
		}
		out = data
		return nil
	})
	if err != nil {
		log.Warn(ctx, "AI request failed", "attempts", attempt, "err", err)
		return nil, err
	}
	return out, nil
}

func serviceError(status int, data []byte) error {
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
		return fmt.Errorf("%w (%d): %s", ErrService, status, eb.Error)
	}
	return fmt.Errorf("%w (%d): %s", ErrService, status, strings.TrimSpace(string(data)))
}

// StripFences removes a markdown code fence (``` or ```json) around a JSON
// document. Text without fences is returned trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
		rest = rest[nl+1:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// decode strips fences and unmarshals data into v.
func decode(data []byte, v any) error {
	if err := json.Unmarshal([]byte(StripFences(string(data))), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
