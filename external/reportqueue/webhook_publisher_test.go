package reportqueue

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPublish_PostsJSONWithAuth(t *testing.T) {
	var (
		gotBody   string
		gotAuth   string
		gotKind   string
		gotMethod string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotAuth = r.Header.Get("authorization")
		gotKind = r.Header.Get("x-report-kind")
		gotMethod = r.Method
	}))
	t.Cleanup(server.Close)

	publisher, err := NewWebhookPublisher(WebhookPublisherConfig{
		TargetURL: server.URL,
		Token:     "secret",
	})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	payload := map[string]any{"players": 3, "round": "Jornada 3"}
	if err := publisher.Publish(t.Context(), "master-table", payload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("method = %q", gotMethod)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotKind != "master-table" {
		t.Fatalf("report kind = %q", gotKind)
	}
	if !strings.Contains(gotBody, `"round":"Jornada 3"`) {
		t.Fatalf("body = %s", gotBody)
	}
}

func TestPublish_RetriesTransientFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)

	publisher, err := NewWebhookPublisher(WebhookPublisherConfig{TargetURL: server.URL, MaxRetries: 1})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	if err := publisher.Publish(t.Context(), "master-table", map[string]int{"players": 3}); err != nil {
		t.Fatalf("publish after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a retry after 503, got %d calls", calls)
	}
}

func TestPublish_ClientErrorFailsFast(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	t.Cleanup(server.Close)

	publisher, err := NewWebhookPublisher(WebhookPublisherConfig{TargetURL: server.URL, MaxRetries: 3})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	if err := publisher.Publish(t.Context(), "master-table", nil); err == nil {
		t.Fatalf("expected an error on 422")
	}
	if calls != 1 {
		t.Fatalf("422 must not be retried, got %d calls", calls)
	}
}

func TestNewWebhookPublisher_RejectsBadTarget(t *testing.T) {
	if _, err := NewWebhookPublisher(WebhookPublisherConfig{TargetURL: "ftp://nope"}); err == nil {
		t.Fatalf("expected an error for a non-http target")
	}
	if _, err := NewWebhookPublisher(WebhookPublisherConfig{}); err == nil {
		t.Fatalf("expected an error for an empty target")
	}
}
