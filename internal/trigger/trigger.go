package trigger

import (
	"errors"
	"strings"

	"github.com/nektos/act/pkg/model"

	"github.com/johannaengland/action-lint-runner/internal/event"
)

// Decision is the outcome of evaluating a workflow's trigger table against
// one event context.
type Decision struct {
	// Run reports whether the job should start.
	Run bool

	// Events lists the workflow trigger names that matched, e.g.
	// ["pull_request"]. Empty when Run is false.
	Events []string
}

// Evaluate decides whether the workflow should run for the supplied event
// context and changed files. A non-matching event is a silent skip, never an
// error; only a missing event name is rejected.
func Evaluate(wf *model.Workflow, evtCtx event.Context, changedFiles []string) (Decision, error) {
	if evtCtx.Name == "" {
		return Decision{}, errors.New("event name is required")
	}

	files := normalizePaths(changedFiles)

	var matched []string
	for _, evt := range wf.On() {
		if evt != evtCtx.Name {
			continue
		}
		rules := parseEventRules(wf.OnEvent(evt))
		if ruleMatch(evt, rules, evtCtx, files) {
			matched = append(matched, evt)
		}
	}

	return Decision{Run: len(matched) > 0, Events: matched}, nil
}

type eventRules struct {
	Branches       []string
	BranchesIgnore []string
	Paths          []string
	PathsIgnore    []string
	Tags           []string
	TagsIgnore     []string
	Types          []string
}

func parseEventRules(raw interface{}) eventRules {
	rules := eventRules{}
	if raw == nil {
		return rules
	}

	switch v := raw.(type) {
	case map[string]interface{}:
		for k, val := range v {
			switch strings.ToLower(k) {
			case "branches":
				rules.Branches = asStringSlice(val)
			case "branches-ignore":
				rules.BranchesIgnore = asStringSlice(val)
			case "paths":
				rules.Paths = asStringSlice(val)
			case "paths-ignore":
				rules.PathsIgnore = asStringSlice(val)
			case "tags":
				rules.Tags = asStringSlice(val)
			case "tags-ignore":
				rules.TagsIgnore = asStringSlice(val)
			case "types":
				rules.Types = asStringSlice(val)
			}
		}
	case []interface{}:
		rules.Types = asStringSlice(v)
	case []string:
		rules.Types = append(rules.Types, v...)
	case string:
		rules.Types = []string{strings.TrimSpace(v)}
	}

	return rules
}

func ruleMatch(evt string, rules eventRules, ctx event.Context, files []string) bool {
	switch evt {
	case "pull_request", "pull_request_target":
		if !matchesEventTypes(rules.Types, ctx.Action) {
			return false
		}
		if !matchesBranchFilters(rules.Branches, rules.BranchesIgnore, ctx.BaseRef) {
			return false
		}
		return matchesPaths(rules.Paths, rules.PathsIgnore, files)
	case "push":
		branch, tag := splitRef(ctx.Ref)
		if tag != "" {
			if !matchesPatternList(rules.Tags, tag) {
				return false
			}
			if len(rules.TagsIgnore) > 0 && matchesPatternList(rules.TagsIgnore, tag) {
				return false
			}
		} else {
			if !matchesBranchFilters(rules.Branches, rules.BranchesIgnore, branch) {
				return false
			}
		}
		return matchesPaths(rules.Paths, rules.PathsIgnore, files)
	default:
		if len(rules.Types) == 0 {
			return true
		}
		return matchesEventTypes(rules.Types, ctx.Action)
	}
}
