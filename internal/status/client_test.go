package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPublish(t *testing.T) {
	var gotPath, gotAuth string
	var gotReport Report
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReport); err != nil {
			t.Errorf("decode report: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "ghs_token")
	report := Report{
		State:       StateSuccess,
		Context:     "Lint / Lint changed files",
		Description: "linting passed",
	}
	if err := client.Publish(context.Background(), "johannaengland/zinolib", "abc123", report); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if gotPath != "/repos/johannaengland/zinolib/statuses/abc123" {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer ghs_token" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if diff := cmp.Diff(report, gotReport); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestPublish_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Bad credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad")
	err := client.Publish(context.Background(), "o/r", "abc", Report{State: StateFailure})
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}

func TestPublish_MissingTarget(t *testing.T) {
	client := NewClient("", "tok")
	if err := client.Publish(context.Background(), "", "", Report{}); err == nil {
		t.Fatal("expected an error when repository and sha are missing")
	}
}
