// Package delegate executes the pinned linter container and maps its exit
// status onto the job result. A run moves Pending -> Running -> Succeeded or
// Failed; terminal states are never retried.
package delegate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/johannaengland/action-lint-runner/internal/envset"
)

// Status is a delegate run state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is the outcome of one delegate invocation.
type Run struct {
	ID       string
	Status   Status
	ExitCode int
	Duration time.Duration
	TimedOut bool
	LogPath  string

	// Err is set on abnormal termination: start failure or timeout. A plain
	// non-zero exit leaves Err nil and records the code.
	Err error
}

// Succeeded reports whether the run reached the succeeded terminal state.
func (r Run) Succeeded() bool {
	return r.Status == StatusSucceeded
}

const workspaceMount = "/tmp/lint"

// Invoker executes the pinned container image through the configured
// container runtime.
type Invoker struct {
	// Runtime is the container runtime binary, "docker" when empty.
	Runtime string

	// Image is the pinned delegate image.
	Image string

	// WorkDir receives per-run delegate logs.
	WorkDir string

	// Timeout bounds the delegate; expiry is abnormal termination.
	Timeout time.Duration

	// Exec builds the command to start. Defaults to exec.CommandContext;
	// tests substitute plain commands.
	Exec func(ctx context.Context, name string, args ...string) *exec.Cmd

	Logger *slog.Logger
}

// Invoke runs the delegate for one job instance with the assembled record as
// its environment, blocking until it exits. The returned Run is always in a
// terminal state.
func (inv Invoker) Invoke(ctx context.Context, runID, repoDir string, rec envset.Record) Run {
	logger := inv.Logger
	if logger == nil {
		logger = slog.Default()
	}

	run := Run{ID: runID, Status: StatusPending, ExitCode: -1}

	if err := os.MkdirAll(inv.WorkDir, 0o755); err != nil {
		run.Status = StatusFailed
		run.Err = fmt.Errorf("create work dir: %w", err)
		return run
	}
	run.LogPath = filepath.Join(inv.WorkDir, fmt.Sprintf("run-%s.log", runID))

	cctx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	name, args := inv.commandLine(repoDir, rec)
	build := inv.Exec
	if build == nil {
		build = exec.CommandContext
	}
	cmd := build(cctx, name, args...)

	logger.Info("delegate starting",
		slog.String("run_id", runID),
		slog.String("image", inv.Image),
	)
	run.Status = StatusRunning
	start := time.Now()

	out, err := cmd.CombinedOutput()
	run.Duration = time.Since(start)
	if werr := os.WriteFile(run.LogPath, out, 0o644); werr != nil {
		logger.Warn("delegate log not persisted",
			slog.String("run_id", runID),
			slog.String("error", werr.Error()),
		)
		run.LogPath = ""
	}

	if cctx.Err() == context.DeadlineExceeded {
		run.Status = StatusFailed
		run.TimedOut = true
		run.Err = fmt.Errorf("delegate timed out after %s", inv.Timeout)
		return run
	}

	if err == nil {
		run.Status = StatusSucceeded
		run.ExitCode = 0
		logger.Info("delegate succeeded",
			slog.String("run_id", runID),
			slog.Duration("duration", run.Duration),
		)
		return run
	}

	run.Status = StatusFailed
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		run.ExitCode = exitErr.ExitCode()
	} else {
		run.Err = fmt.Errorf("start delegate: %w", err)
	}
	logger.Warn("delegate failed",
		slog.String("run_id", runID),
		slog.Int("exit_code", run.ExitCode),
		slog.Duration("duration", run.Duration),
	)
	return run
}

func (inv Invoker) commandLine(repoDir string, rec envset.Record) (string, []string) {
	runtime := inv.Runtime
	if runtime == "" {
		runtime = "docker"
	}

	args := []string{"run", "--rm"}
	for _, pair := range rec.Environ() {
		args = append(args, "-e", pair)
	}
	args = append(args,
		"-e", "RUN_LOCAL=true",
		"-v", repoDir+":"+workspaceMount,
		inv.Image,
	)
	return runtime, args
}
