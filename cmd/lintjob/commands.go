package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johannaengland/action-lint-runner/internal/config"
	"github.com/johannaengland/action-lint-runner/internal/envset"
	"github.com/johannaengland/action-lint-runner/internal/event"
	"github.com/johannaengland/action-lint-runner/internal/runner"
	"github.com/johannaengland/action-lint-runner/internal/workflow"
)

var (
	configPath string

	// exitCode mirrors the delegate's exit status after a completed run.
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:           "lintjob",
	Short:         "Runs the lint workflow for one trigger event",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "runner configuration file")
	rootCmd.AddCommand(runCmd, detectCmd, envCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the trigger event and, if it matches, invoke the linter",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		evtCtx, err := event.FromEnvironment(nil)
		if err != nil {
			return err
		}

		result, err := r.Process(cmd.Context(), evtCtx)
		if err != nil {
			return err
		}
		if result.Skipped {
			fmt.Println("Event does not match the workflow triggers; nothing to do.")
			return nil
		}

		fmt.Printf("Run %s finished: %s (exit %d)\n", result.RunID, result.Conclusion, result.ExitCode)
		exitCode = result.ExitCode
		return nil
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Print the should-run decision for the current event",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		evtCtx, err := event.FromEnvironment(nil)
		if err != nil {
			return err
		}

		decision, err := r.Evaluate(cmd.Context(), evtCtx)
		if err != nil {
			return err
		}
		if !decision.Run {
			fmt.Printf("Workflow %q does not trigger for %s.\n", r.Definition().Name, evtCtx.Name)
			return nil
		}
		fmt.Printf("Workflow %q triggers via %s.\n", r.Definition().Name, strings.Join(decision.Events, ", "))
		return nil
	},
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the assembled delegate environment with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		def, err := workflow.Load(cfg.WorkflowFile)
		if err != nil {
			return err
		}

		rec, err := envset.Assemble(def.Job.Delegate.Env, envset.EnvSecrets{})
		if err != nil {
			return err
		}

		redacted := rec.Redacted()
		for _, name := range rec.Names() {
			fmt.Printf("%s=%s\n", name, redacted[name])
		}
		return nil
	},
}

func newRunner() (*runner.Runner, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return runner.New(cfg, envset.EnvSecrets{}, logger)
}
