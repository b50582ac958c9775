package event

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromEnvironment_Push(t *testing.T) {
	env := map[string]string{
		"GITHUB_EVENT_NAME": "push",
		"GITHUB_REF":        "refs/heads/main",
		"GITHUB_SHA":        "abc123",
		"GITHUB_REPOSITORY": "johannaengland/zinolib",
	}

	ctx, err := FromEnvironment(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("FromEnvironment returned error: %v", err)
	}

	want := Context{
		Name:       "push",
		Ref:        "refs/heads/main",
		SHA:        "abc123",
		Repository: "johannaengland/zinolib",
	}
	if diff := cmp.Diff(want, ctx); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got := ctx.Branch(); got != "main" {
		t.Fatalf("Branch() = %q, want main", got)
	}
}

func TestFromEnvironment_MissingEventName(t *testing.T) {
	_, err := FromEnvironment(func(string) string { return "" })
	if err == nil {
		t.Fatal("expected an error when GITHUB_EVENT_NAME is unset")
	}
}

func TestPopulateFromPayload_PullRequest(t *testing.T) {
	ctx := Context{Name: "pull_request"}
	payload := []byte(`{
		"action": "synchronize",
		"repository": {"full_name": "johannaengland/zinolib", "default_branch": "main"},
		"pull_request": {
			"base": {"ref": "main"},
			"head": {"ref": "feature-x", "sha": "deadbeef"}
		}
	}`)

	PopulateFromPayload(&ctx, payload)

	want := Context{
		Name:          "pull_request",
		Action:        "synchronize",
		BaseRef:       "main",
		HeadRef:       "feature-x",
		SHA:           "deadbeef",
		DefaultBranch: "main",
		Repository:    "johannaengland/zinolib",
	}
	if diff := cmp.Diff(want, ctx); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPopulateFromPayload_PushRef(t *testing.T) {
	ctx := Context{Name: "push", Ref: "refs/heads/stale"}
	PopulateFromPayload(&ctx, []byte(`{"ref": "refs/heads/main", "after": "cafe01"}`))

	if ctx.Ref != "refs/heads/main" {
		t.Fatalf("Ref = %q, want refs/heads/main", ctx.Ref)
	}
	if ctx.SHA != "cafe01" {
		t.Fatalf("SHA = %q, want cafe01", ctx.SHA)
	}
}

func TestBranch_TagPush(t *testing.T) {
	ctx := Context{Name: "push", Ref: "refs/tags/v1.2.3"}
	if got := ctx.Branch(); got != "" {
		t.Fatalf("Branch() = %q, want empty for tag push", got)
	}
}
