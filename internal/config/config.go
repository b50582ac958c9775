// Package config holds the runner's own settings: where the checkout lives,
// which workflow definition to evaluate, and how to reach the container
// runtime and the statuses API. The delegate's options come from the
// workflow definition, not from here.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the runner configuration.
type Config struct {
	// RepoDir is the checkout the delegate lints.
	RepoDir string `yaml:"repo_dir"`

	// WorkflowFile overrides the embedded workflow definition when set.
	WorkflowFile string `yaml:"workflow_file"`

	// WorkDir receives per-run logs.
	WorkDir string `yaml:"work_dir"`

	GitBin           string `yaml:"git_bin"`
	ContainerRuntime string `yaml:"container_runtime"`

	// TimeoutMinutes bounds the delegate; zero defers to the definition's
	// timeout-minutes.
	TimeoutMinutes int `yaml:"timeout_minutes"`

	// APIBaseURL is the statuses API endpoint; empty selects the public one.
	APIBaseURL string `yaml:"api_base_url"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		RepoDir:          ".",
		WorkDir:          "./lintjob-data",
		GitBin:           "git",
		ContainerRuntime: "docker",
	}
}

// Load reads the configuration file at path, applies LINTJOB_* environment
// overrides, and validates the result. An empty path starts from defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("LINTJOB_REPO_DIR"); v != "" {
		c.RepoDir = v
	}
	if v := getenv("LINTJOB_WORKFLOW_FILE"); v != "" {
		c.WorkflowFile = v
	}
	if v := getenv("LINTJOB_WORK_DIR"); v != "" {
		c.WorkDir = v
	}
	if v := getenv("LINTJOB_GIT_BIN"); v != "" {
		c.GitBin = v
	}
	if v := getenv("LINTJOB_CONTAINER_RUNTIME"); v != "" {
		c.ContainerRuntime = v
	}
	if v := getenv("LINTJOB_API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := getenv("LINTJOB_TIMEOUT_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TimeoutMinutes = n
		}
	}
}

// Validate checks the configuration for values the runner cannot work with.
func (c Config) Validate() error {
	if c.RepoDir == "" {
		return fmt.Errorf("config: repo_dir must be set")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("config: work_dir must be set")
	}
	if c.TimeoutMinutes < 0 {
		return fmt.Errorf("config: timeout_minutes must not be negative")
	}
	return nil
}
