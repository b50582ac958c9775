package event

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// FromEnvironment builds an event Context from the GITHUB_* variables the
// host platform exports, enriched with fields from the event payload file
// when one is present.
func FromEnvironment(getenv func(string) string) (Context, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	name := strings.TrimSpace(getenv("GITHUB_EVENT_NAME"))
	if name == "" {
		return Context{}, errors.New("GITHUB_EVENT_NAME is not set")
	}

	ctx := Context{
		Name:          name,
		Ref:           strings.TrimSpace(getenv("GITHUB_REF")),
		BaseRef:       strings.TrimSpace(getenv("GITHUB_BASE_REF")),
		HeadRef:       strings.TrimSpace(getenv("GITHUB_HEAD_REF")),
		DefaultBranch: strings.TrimSpace(getenv("GITHUB_DEFAULT_BRANCH")),
		SHA:           strings.TrimSpace(getenv("GITHUB_SHA")),
		Repository:    strings.TrimSpace(getenv("GITHUB_REPOSITORY")),
	}

	payloadPath := strings.TrimSpace(getenv("GITHUB_EVENT_PATH"))
	if payloadPath != "" {
		if data, err := os.ReadFile(payloadPath); err == nil {
			PopulateFromPayload(&ctx, data)
		}
	}

	return ctx, nil
}

// PopulateFromPayload fills in context fields from the raw event payload
// JSON. Fields already present on the context are only overwritten when the
// payload carries a non-empty value.
func PopulateFromPayload(ctx *Context, payload []byte) {
	type basePayload struct {
		Action     string `json:"action"`
		Repository struct {
			FullName      string `json:"full_name"`
			DefaultBranch string `json:"default_branch"`
		} `json:"repository"`
	}
	var base basePayload
	if err := json.Unmarshal(payload, &base); err == nil {
		if base.Action != "" {
			ctx.Action = base.Action
		}
		if base.Repository.DefaultBranch != "" {
			ctx.DefaultBranch = base.Repository.DefaultBranch
		}
		if base.Repository.FullName != "" {
			ctx.Repository = base.Repository.FullName
		}
	}

	switch ctx.Name {
	case "pull_request", "pull_request_target":
		var pr struct {
			Action      string `json:"action"`
			PullRequest struct {
				Base struct {
					Ref string `json:"ref"`
				} `json:"base"`
				Head struct {
					Ref string `json:"ref"`
					SHA string `json:"sha"`
				} `json:"head"`
			} `json:"pull_request"`
		}
		if err := json.Unmarshal(payload, &pr); err == nil {
			if pr.Action != "" {
				ctx.Action = pr.Action
			}
			if pr.PullRequest.Base.Ref != "" {
				ctx.BaseRef = pr.PullRequest.Base.Ref
			}
			if pr.PullRequest.Head.Ref != "" {
				ctx.HeadRef = pr.PullRequest.Head.Ref
			}
			if pr.PullRequest.Head.SHA != "" {
				ctx.SHA = pr.PullRequest.Head.SHA
			}
		}
	case "push":
		var push struct {
			Ref   string `json:"ref"`
			After string `json:"after"`
		}
		if err := json.Unmarshal(payload, &push); err == nil {
			if push.Ref != "" {
				ctx.Ref = push.Ref
			}
			if push.After != "" {
				ctx.SHA = push.After
			}
		}
	}
}

func splitRef(ref string) (branch string, tag string) {
	if strings.HasPrefix(ref, "refs/heads/") {
		return strings.TrimPrefix(ref, "refs/heads/"), ""
	}
	if strings.HasPrefix(ref, "refs/tags/") {
		return "", strings.TrimPrefix(ref, "refs/tags/")
	}
	return strings.TrimSpace(ref), ""
}
