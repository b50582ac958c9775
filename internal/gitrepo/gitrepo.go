// Package gitrepo runs the git operations the job needs before the delegate
// starts: unshallowing the checkout and listing changed files for path
// filters and diff-scoped linting.
package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultCommandTimeout = 5 * time.Minute

// Repo wraps one local checkout.
type Repo struct {
	// Dir is the checkout root.
	Dir string

	// Git is the git binary to invoke, "git" when empty.
	Git string

	// Timeout bounds each git command, defaultCommandTimeout when zero.
	Timeout time.Duration
}

// EnsureFullHistory converts a shallow checkout into a full one so the
// delegate can diff changed files against real history. A checkout that is
// already complete is left alone.
func (r Repo) EnsureFullHistory(ctx context.Context) error {
	out, err := r.git(ctx, "rev-parse", "--is-shallow-repository")
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) != "true" {
		return nil
	}
	_, err = r.git(ctx, "fetch", "--unshallow")
	return err
}

// ChangedFiles lists the files that differ between base and HEAD. An empty
// base compares against the first parent of HEAD.
func (r Repo) ChangedFiles(ctx context.Context, base string) ([]string, error) {
	if base == "" {
		base = "HEAD^"
	}
	out, err := r.git(ctx, "diff", "--name-only", base+"...HEAD")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			files = append(files, trimmed)
		}
	}
	return files, nil
}

// HeadSHA returns the commit HEAD points at.
func (r Repo) HeadSHA(ctx context.Context) (string, error) {
	out, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r Repo) git(ctx context.Context, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = defaultCommandTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bin := r.Git
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(cctx, bin, args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, string(out))
	}
	return string(out), nil
}
