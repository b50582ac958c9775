// Package runner drives one job end to end: evaluate the workflow triggers
// for an event, assemble the delegate environment, invoke the pinned
// container, and publish the outcome as a commit status. Each invocation is
// independent; nothing is retained between runs.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/johannaengland/action-lint-runner/internal/config"
	"github.com/johannaengland/action-lint-runner/internal/delegate"
	"github.com/johannaengland/action-lint-runner/internal/envset"
	"github.com/johannaengland/action-lint-runner/internal/event"
	"github.com/johannaengland/action-lint-runner/internal/gitrepo"
	"github.com/johannaengland/action-lint-runner/internal/status"
	"github.com/johannaengland/action-lint-runner/internal/trigger"
	"github.com/johannaengland/action-lint-runner/internal/workflow"
)

// Reporter publishes a status report on a commit.
type Reporter interface {
	Publish(ctx context.Context, repo, sha string, report status.Report) error
}

// Git covers the repository operations the runner performs before the
// delegate starts.
type Git interface {
	EnsureFullHistory(ctx context.Context) error
	ChangedFiles(ctx context.Context, base string) ([]string, error)
}

// Invoker executes the delegate for one run.
type Invoker interface {
	Invoke(ctx context.Context, runID, repoDir string, rec envset.Record) delegate.Run
}

// Result is the outcome of processing one trigger event.
type Result struct {
	RunID string

	// Skipped is set when the event did not match the workflow triggers.
	// A skipped event produces no delegate invocation and no status report.
	Skipped bool

	// Events lists the matched trigger names for a non-skipped run.
	Events []string

	// Conclusion is "success" or "failure" for a non-skipped run.
	Conclusion string

	// ExitCode mirrors the delegate's exit code; 0 for success, 1 when the
	// delegate terminated abnormally without a code.
	ExitCode int
}

// Runner processes trigger events against one workflow definition.
type Runner struct {
	cfg     config.Config
	def     workflow.Definition
	secrets envset.SecretSource
	git     Git
	logger  *slog.Logger

	// newInvoker and newReporter build the per-run collaborators; tests
	// substitute fakes.
	newInvoker  func(image string, timeout time.Duration) Invoker
	newReporter func(token string) Reporter
}

// New wires a runner from configuration. The workflow definition is loaded
// once; every processed event evaluates against the same definition.
func New(cfg config.Config, secrets envset.SecretSource, logger *slog.Logger) (*Runner, error) {
	def, err := workflow.Load(cfg.WorkflowFile)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		cfg:     cfg,
		def:     def,
		secrets: secrets,
		git:     gitrepo.Repo{Dir: cfg.RepoDir, Git: cfg.GitBin},
		logger:  logger,
	}
	r.newInvoker = func(image string, timeout time.Duration) Invoker {
		return delegate.Invoker{
			Runtime: cfg.ContainerRuntime,
			Image:   image,
			WorkDir: cfg.WorkDir,
			Timeout: timeout,
			Logger:  logger,
		}
	}
	r.newReporter = func(token string) Reporter {
		return status.NewClient(cfg.APIBaseURL, token)
	}
	return r, nil
}

// Definition returns the loaded workflow definition.
func (r *Runner) Definition() workflow.Definition {
	return r.def
}

// Evaluate runs only the trigger decision for an event, without side
// effects.
func (r *Runner) Evaluate(ctx context.Context, evtCtx event.Context) (trigger.Decision, error) {
	return trigger.Evaluate(r.def.Triggers, evtCtx, r.changedFiles(ctx, evtCtx))
}

// Process runs the whole job for one event. A non-matching event returns a
// skipped result and touches nothing. Errors before the delegate starts
// (secret resolution, git, image mapping) abort the run and surface as the
// error; a delegate failure is a regular failure result, not an error.
func (r *Runner) Process(ctx context.Context, evtCtx event.Context) (Result, error) {
	runID := uuid.NewString()
	logger := r.logger.With(slog.String("run_id", runID), slog.String("event", evtCtx.Name))

	decision, err := trigger.Evaluate(r.def.Triggers, evtCtx, r.changedFiles(ctx, evtCtx))
	if err != nil {
		return Result{}, err
	}
	if !decision.Run {
		logger.Info("event does not match workflow triggers, skipping")
		return Result{RunID: runID, Skipped: true}, nil
	}
	logger.Info("job triggered", slog.Any("events", decision.Events))

	if r.def.Job.FullHistory {
		if err := r.git.EnsureFullHistory(ctx); err != nil {
			return Result{}, fmt.Errorf("fetch full history: %w", err)
		}
	}

	rec, err := envset.Assemble(r.def.Job.Delegate.Env, r.secrets)
	if err != nil {
		return Result{}, fmt.Errorf("assemble environment: %w", err)
	}

	image, err := workflow.ContainerImage(r.def.Job.Delegate.Ref)
	if err != nil {
		return Result{}, err
	}

	reporter := r.newReporter(rec.Value("GITHUB_TOKEN"))
	r.report(ctx, logger, reporter, evtCtx, status.Report{
		State:       status.StatePending,
		Context:     r.statusContext(),
		Description: "linting changed files",
	})

	run := r.newInvoker(image, r.timeout()).Invoke(ctx, runID, r.cfg.RepoDir, rec)

	result := Result{RunID: runID, Events: decision.Events}
	if run.Succeeded() {
		result.Conclusion = "success"
		result.ExitCode = 0
		r.report(ctx, logger, reporter, evtCtx, status.Report{
			State:       status.StateSuccess,
			Context:     r.statusContext(),
			Description: "linting passed",
		})
		return result, nil
	}

	result.Conclusion = "failure"
	result.ExitCode = run.ExitCode
	if result.ExitCode <= 0 {
		result.ExitCode = 1
	}
	description := "linting failed"
	if run.Err != nil {
		description = run.Err.Error()
	}
	r.report(ctx, logger, reporter, evtCtx, status.Report{
		State:       status.StateFailure,
		Context:     r.statusContext(),
		Description: description,
	})
	return result, nil
}

// ProcessAll handles several events as independent job instances. Results
// keep the order of the input events. One instance failing neither cancels
// nor erases the others: every instance runs to completion, and the returned
// error joins the per-instance errors.
func (r *Runner) ProcessAll(ctx context.Context, events []event.Context) ([]Result, error) {
	results := make([]Result, len(events))
	errs := make([]error, len(events))

	var g errgroup.Group
	for i, evtCtx := range events {
		i, evtCtx := i, evtCtx
		g.Go(func() error {
			results[i], errs[i] = r.Process(ctx, evtCtx)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// changedFiles lists files for trigger path filters. Failure to list is not
// fatal: the canonical definition carries no path rules, and an empty list
// keeps filterless triggers matching.
func (r *Runner) changedFiles(ctx context.Context, evtCtx event.Context) []string {
	base := ""
	if evtCtx.BaseRef != "" {
		base = "origin/" + evtCtx.BaseRef
	}
	files, err := r.git.ChangedFiles(ctx, base)
	if err != nil {
		r.logger.Warn("changed file listing failed", slog.String("error", err.Error()))
		return nil
	}
	return files
}

func (r *Runner) report(ctx context.Context, logger *slog.Logger, reporter Reporter, evtCtx event.Context, report status.Report) {
	if !r.def.Job.Permissions.Allows("statuses", workflow.AccessWrite) {
		logger.Info("statuses: write not granted, skipping status report")
		return
	}
	if err := reporter.Publish(ctx, evtCtx.Repository, evtCtx.SHA, report); err != nil {
		logger.Warn("status report failed",
			slog.String("state", string(report.State)),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Runner) statusContext() string {
	return r.def.Name + " / " + r.def.Job.Name
}

func (r *Runner) timeout() time.Duration {
	minutes := r.cfg.TimeoutMinutes
	if minutes == 0 {
		minutes = r.def.Job.TimeoutMinutes
	}
	return time.Duration(minutes) * time.Minute
}
