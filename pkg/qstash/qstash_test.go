package qstash

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPublishPostsJSON(t *testing.T) {
	t.Parallel()

	var (
		gotPath  string
		gotAuth  string
		gotDedup string
		gotBody  map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotDedup = r.Header.Get("Upstash-Deduplication-Id")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messageId":"msg_123"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, Token: "tok"}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	id, err := client.Publish(context.Background(), "reservations", map[string]any{"kind": "reservation.confirmed"},
		WithDeduplicationID("MUM-251125-AB12:reservation.confirmed"))
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if id != "msg_123" {
		t.Fatalf("message id = %q", id)
	}
	if gotPath != "/v2/publish/reservations" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotDedup != "MUM-251125-AB12:reservation.confirmed" {
		t.Fatalf("dedup header = %q", gotDedup)
	}
	if gotBody["kind"] != "reservation.confirmed" {
		t.Fatalf("body = %#v", gotBody)
	}
}

func TestPublishReportsUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer srv.Close()

	client := MustNew(Config{URL: srv.URL, Token: "bad"})
	_, err := client.Publish(context.Background(), "reservations", map[string]any{})
	if !errors.Is(err, ErrPublish) {
		t.Fatalf("Publish() error = %v, want ErrPublish", err)
	}

	if _, err := client.Publish(context.Background(), " ", nil); !errors.Is(err, ErrPublish) {
		t.Fatalf("Publish(empty destination) error = %v", err)
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{Token: "tok"}); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewClient(Config{URL: "https://qstash.upstash.io"}); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := NewClient(Config{URL: "::bad", Token: "tok"}); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
