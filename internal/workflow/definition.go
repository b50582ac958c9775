// Package workflow loads the lint workflow definition: the trigger table the
// event matcher evaluates, the permission set granted to the run, and the
// pinned delegate the job hands control to.
package workflow

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nektos/act/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed lint.yml
var defaultDefinition []byte

const checkoutActionPrefix = "actions/checkout"

// Definition is one parsed workflow file. Triggers holds the `on:` table in
// the form the trigger package evaluates; Job describes the single lint job.
type Definition struct {
	Name     string
	Triggers *model.Workflow
	Job      Job
}

// Job is the lint job extracted from the definition.
type Job struct {
	ID             string
	Name           string
	TimeoutMinutes int
	Permissions    Permissions

	// FullHistory is set when the checkout step requests fetch-depth 0,
	// meaning the delegate diffs changed files against real history rather
	// than a shallow snapshot.
	FullHistory bool

	Delegate Delegate
}

// Delegate is the pinned external artifact the job hands control to.
type Delegate struct {
	// Ref is the versioned action reference, e.g. "github/super-linter/slim@v5".
	Ref string

	// Env is the environment passed to the delegate. Secret references keep
	// their `${{ secrets.NAME }}` form until the assembler resolves them.
	Env map[string]string
}

// Default returns the definition embedded in the binary.
func Default() (Definition, error) {
	return parse(defaultDefinition)
}

// Load reads a definition from path, falling back to the embedded one when
// path is empty.
func Load(path string) (Definition, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read workflow %s: %w", path, err)
	}
	def, err := parse(data)
	if err != nil {
		return Definition{}, fmt.Errorf("parse workflow %s: %w", path, err)
	}
	return def, nil
}

func parse(data []byte) (Definition, error) {
	triggers, err := model.ReadWorkflow(bytes.NewReader(data))
	if err != nil {
		return Definition{}, fmt.Errorf("parse trigger table: %w", err)
	}

	var file fileSpec
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Definition{}, fmt.Errorf("parse job spec: %w", err)
	}
	if len(file.Jobs) != 1 {
		return Definition{}, fmt.Errorf("definition must contain exactly one job, found %d", len(file.Jobs))
	}

	var jobID string
	var raw jobSpec
	for id, j := range file.Jobs {
		jobID, raw = id, j
	}

	perms := file.Permissions
	if len(raw.Permissions) > 0 {
		perms = raw.Permissions
	}

	job := Job{
		ID:             jobID,
		Name:           raw.Name,
		TimeoutMinutes: raw.TimeoutMinutes,
		Permissions:    NewPermissions(perms),
	}
	if job.Name == "" {
		job.Name = jobID
	}

	for _, step := range raw.Steps {
		switch {
		case step.Uses == "":
			continue
		case strings.HasPrefix(step.Uses, checkoutActionPrefix):
			job.FullHistory = asString(step.With["fetch-depth"]) == "0"
		default:
			if job.Delegate.Ref != "" {
				return Definition{}, fmt.Errorf("definition must contain exactly one delegate step, found %q and %q", job.Delegate.Ref, step.Uses)
			}
			job.Delegate = Delegate{Ref: step.Uses, Env: stringMap(step.Env)}
		}
	}
	if job.Delegate.Ref == "" {
		return Definition{}, errors.New("definition has no delegate step")
	}

	name := triggers.Name
	if name == "" {
		name = jobID
	}

	return Definition{Name: name, Triggers: triggers, Job: job}, nil
}

type fileSpec struct {
	Name        string             `yaml:"name"`
	Permissions map[string]string  `yaml:"permissions"`
	Jobs        map[string]jobSpec `yaml:"jobs"`
}

type jobSpec struct {
	Name           string            `yaml:"name"`
	RunsOn         string            `yaml:"runs-on"`
	TimeoutMinutes int               `yaml:"timeout-minutes"`
	Permissions    map[string]string `yaml:"permissions"`
	Steps          []stepSpec        `yaml:"steps"`
}

// Step scalars keep their YAML types (fetch-depth: 0 is an int, toggles may
// be bare booleans), so with/env decode loosely and are stringified after.
type stepSpec struct {
	Name string         `yaml:"name"`
	Uses string         `yaml:"uses"`
	With map[string]any `yaml:"with"`
	Env  map[string]any `yaml:"env"`
}

func stringMap(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = asString(v)
	}
	return out
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
