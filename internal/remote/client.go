// Package remote talks to the learning-management API and provides the
// executors that replay queued actions against it.
//
// Every mutating request carries the action ID as Idempotency-Key, so a
// replay of an action the server already applied is harmless.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/executor"
)

const defaultTimeout = 15 * time.Second

// HTTPError is a non-2xx answer from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("remote: %d: %s", e.StatusCode, msg)
}

// Retryable reports whether the status is worth another attempt.
func (e *HTTPError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return domain.ErrConflict
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	}
	return nil
}

// Client is an API client bound to one server and token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL. An empty token sends no
// Authorization header.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "remote")
	return c
}

// sessionVerbs maps session action types to the path verb.
var sessionVerbs = map[domain.ActionType]string{
	domain.ActionStartResource:    "start",
	domain.ActionPauseResource:    "pause",
	domain.ActionResumeResource:   "resume",
	domain.ActionCompleteResource: "complete",
}

// Register binds an executor for every action type to r.
func (c *Client) Register(r *executor.Registry) {
	for t := range sessionVerbs {
		r.Register(t, c.SessionAction)
	}
	r.Register(domain.ActionSendMessage, c.SendMessage)
}

type sessionBody struct {
	ActionID        string         `json:"action_id"`
	ClientTimestamp time.Time      `json:"client_timestamp"`
	Payload         domain.Payload `json:"payload,omitempty"`
}

// SessionAction posts a timer transition for a study session.
func (c *Client) SessionAction(ctx context.Context, req executor.Request) error {
	verb, ok := sessionVerbs[req.Type]
	if !ok {
		return domain.Terminal(fmt.Errorf("remote: %w: %q", domain.ErrUnknownActionType, req.Type))
	}
	path := "/api/sessions/" + url.PathEscape(req.ResourceID) + "/" + verb
	return c.post(ctx, path, req, sessionBody{
		ActionID:        req.ActionID,
		ClientTimestamp: req.ClientTimestamp.UTC(),
		Payload:         req.Payload,
	})
}

type messageBody struct {
	Content         string    `json:"content"`
	TempID          string    `json:"temp_id,omitempty"`
	ClientTimestamp time.Time `json:"client_timestamp"`
}

// SendMessage posts a chat message to a room.
func (c *Client) SendMessage(ctx context.Context, req executor.Request) error {
	content := req.Payload.String("content")
	if strings.TrimSpace(content) == "" {
		return domain.Terminal(errors.New("remote: message content is empty"))
	}
	path := "/api/rooms/" + url.PathEscape(req.ResourceID) + "/messages"
	return c.post(ctx, path, req, messageBody{
		Content:         content,
		TempID:          req.Payload.String("temp_id"),
		ClientTimestamp: req.ClientTimestamp.UTC(),
	})
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) post(ctx context.Context, path string, req executor.Request, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return domain.Terminal(fmt.Errorf("remote: failed to encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return domain.Terminal(fmt.Errorf("remote: failed to build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.ActionID)
	httpReq.Header.Set("X-Client-Timestamp", req.ClientTimestamp.UTC().Format(time.RFC3339Nano))
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.Retryable(fmt.Errorf("remote: request failed: %w", err))
	}
	defer resp.Body.Close()

	c.logger.Debug("request finished",
		"path", path, "status", resp.StatusCode, "action_id", req.ActionID, "elapsed", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	httpErr := &HTTPError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr apiError
	if json.Unmarshal(raw, &apiErr) == nil {
		httpErr.Message = firstNonEmpty(apiErr.Message, apiErr.Error)
	}
	if httpErr.Message == "" {
		httpErr.Message = strings.TrimSpace(string(raw))
	}

	if httpErr.Retryable() {
		return domain.Retryable(httpErr)
	}
	return domain.Terminal(httpErr)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
