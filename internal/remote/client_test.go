package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/executor"
	"eduplanner/studysync/internal/retry"

	"github.com/google/go-cmp/cmp"
)

type captured struct {
	Method, Path, IdempotencyKey, ClientTS, Auth string
	Body                                         map[string]any
}

func newTestServer(t *testing.T, status int, respBody string) (*httptest.Server, *[]captured) {
	t.Helper()
	var mu sync.Mutex
	var reqs []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		reqs = append(reqs, captured{
			Method:         r.Method,
			Path:           r.URL.Path,
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
			ClientTS:       r.Header.Get("X-Client-Timestamp"),
			Auth:           r.Header.Get("Authorization"),
			Body:           body,
		})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func testClient(url string) *Client {
	return New(url, "tok", WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

var ts = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSessionAction_Paths(t *testing.T) {
	tests := []struct {
		typ  domain.ActionType
		path string
	}{
		{domain.ActionStartResource, "/api/sessions/s1/start"},
		{domain.ActionPauseResource, "/api/sessions/s1/pause"},
		{domain.ActionResumeResource, "/api/sessions/s1/resume"},
		{domain.ActionCompleteResource, "/api/sessions/s1/complete"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			srv, reqs := newTestServer(t, http.StatusOK, `{}`)
			c := testClient(srv.URL)

			err := c.SessionAction(context.Background(), executor.Request{
				ActionID:        "a1",
				Type:            tt.typ,
				ResourceID:      "s1",
				ClientTimestamp: ts,
			})
			if err != nil {
				t.Fatalf("SessionAction failed: %v", err)
			}
			if len(*reqs) != 1 {
				t.Fatalf("expected 1 request, got %d", len(*reqs))
			}
			got := (*reqs)[0]
			if got.Method != http.MethodPost || got.Path != tt.path {
				t.Errorf("request = %s %s, want POST %s", got.Method, got.Path, tt.path)
			}
			if got.IdempotencyKey != "a1" {
				t.Errorf("Idempotency-Key = %q, want a1", got.IdempotencyKey)
			}
			if got.Auth != "Bearer tok" {
				t.Errorf("Authorization = %q", got.Auth)
			}
			if got.ClientTS != ts.Format(time.RFC3339Nano) {
				t.Errorf("X-Client-Timestamp = %q", got.ClientTS)
			}
		})
	}
}

func TestSendMessage(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusCreated, `{"id":"m1"}`)
	c := testClient(srv.URL)

	err := c.SendMessage(context.Background(), executor.Request{
		ActionID:        "a2",
		Type:            domain.ActionSendMessage,
		ResourceID:      "room-1",
		Payload:         domain.Payload{"content": "hello", "temp_id": "temp-1"},
		ClientTimestamp: ts,
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	got := (*reqs)[0]
	if got.Path != "/api/rooms/room-1/messages" {
		t.Errorf("path = %q", got.Path)
	}
	want := map[string]any{
		"content":          "hello",
		"temp_id":          "temp-1",
		"client_timestamp": "2025-03-01T09:00:00Z",
	}
	if diff := cmp.Diff(want, got.Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestSendMessage_EmptyContentIsTerminal(t *testing.T) {
	c := testClient("http://127.0.0.1:0")
	err := c.SendMessage(context.Background(), executor.Request{ActionID: "a", ResourceID: "room-1"})
	if retry.Classify(err) != retry.Terminal {
		t.Fatalf("expected terminal, got %v", err)
	}
}

func TestPost_StatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		body     string
		want     retry.Class
		sentinel error
	}{
		{http.StatusInternalServerError, `{"error":"boom"}`, retry.Transient, nil},
		{http.StatusServiceUnavailable, ``, retry.Transient, nil},
		{http.StatusTooManyRequests, ``, retry.Transient, domain.ErrRateLimited},
		{http.StatusRequestTimeout, ``, retry.Transient, nil},
		{http.StatusBadRequest, `{"message":"invalid"}`, retry.Terminal, nil},
		{http.StatusForbidden, `{"message":"not a member"}`, retry.Terminal, domain.ErrUnauthorized},
		{http.StatusNotFound, ``, retry.Terminal, domain.ErrNotFound},
		{http.StatusConflict, `{"message":"already completed"}`, retry.Terminal, domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, tt.body)
			err := testClient(srv.URL).SessionAction(context.Background(), executor.Request{
				ActionID: "a", Type: domain.ActionPauseResource, ResourceID: "s1",
			})
			if got := retry.Classify(err); got != tt.want {
				t.Errorf("Classify = %v, want %v (err: %v)", got, tt.want, err)
			}
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) || httpErr.StatusCode != tt.status {
				t.Errorf("expected HTTPError with status %d, got %v", tt.status, err)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v in chain, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestPost_TransportErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := testClient(url).SessionAction(context.Background(), executor.Request{
		ActionID: "a", Type: domain.ActionStartResource, ResourceID: "s1",
	})
	if retry.Classify(err) != retry.Transient {
		t.Fatalf("expected retryable transport error, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	r := executor.NewRegistry()
	testClient("http://x").Register(r)

	if diff := cmp.Diff(domain.ActionTypes, sortedTypes(r)); diff != "" {
		t.Errorf("registered types (-want +got):\n%s", diff)
	}
}

func sortedTypes(r *executor.Registry) []domain.ActionType {
	registered := map[domain.ActionType]bool{}
	for _, t := range r.Types() {
		registered[t] = true
	}
	var out []domain.ActionType
	for _, t := range domain.ActionTypes {
		if registered[t] {
			out = append(out, t)
		}
	}
	return out
}
