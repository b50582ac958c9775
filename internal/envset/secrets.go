package envset

import (
	"fmt"
	"os"
)

// SecretSource supplies secret values injected by the host platform for the
// lifetime of one run.
type SecretSource interface {
	Secret(name string) (string, error)
}

// ErrSecretUnavailable is wrapped by sources that cannot supply a requested
// secret.
var ErrSecretUnavailable = fmt.Errorf("secret unavailable")

// EnvSecrets resolves secrets from process environment variables, the way a
// hosted runner exposes them to a job.
type EnvSecrets struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (s EnvSecrets) Secret(name string) (string, error) {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(name); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrSecretUnavailable, name)
}

// StaticSecrets is a fixed in-memory source, used by tests and by the CLI
// when a token is passed on the command line.
type StaticSecrets map[string]string

func (s StaticSecrets) Secret(name string) (string, error) {
	if v, ok := s[name]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrSecretUnavailable, name)
}
