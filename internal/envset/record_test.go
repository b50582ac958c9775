package envset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lintEnv() map[string]string {
	return map[string]string{
		"VALIDATE_ALL_CODEBASE":  "false",
		"DEFAULT_BRANCH":         "main",
		"GITHUB_TOKEN":           "${{ secrets.GITHUB_TOKEN }}",
		"VALIDATE_PYTHON_FLAKE8": "true",
	}
}

func TestAssemble(t *testing.T) {
	rec, err := Assemble(lintEnv(), StaticSecrets{"GITHUB_TOKEN": "ghs_token"})
	require.NoError(t, err)

	assert.Equal(t, 4, rec.Len())
	assert.Equal(t, "false", rec.Value("VALIDATE_ALL_CODEBASE"))
	assert.Equal(t, "main", rec.Value("DEFAULT_BRANCH"))
	assert.Equal(t, "ghs_token", rec.Value("GITHUB_TOKEN"))
	assert.Equal(t, "true", rec.Value("VALIDATE_PYTHON_FLAKE8"))

	assert.Equal(t, []string{
		"DEFAULT_BRANCH=main",
		"GITHUB_TOKEN=ghs_token",
		"VALIDATE_ALL_CODEBASE=false",
		"VALIDATE_PYTHON_FLAKE8=true",
	}, rec.Environ())
}

func TestAssemble_MissingSecret(t *testing.T) {
	_, err := Assemble(lintEnv(), StaticSecrets{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSecretUnavailable)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestAssemble_EmptyOption(t *testing.T) {
	env := lintEnv()
	env["DEFAULT_BRANCH"] = ""
	_, err := Assemble(env, StaticSecrets{"GITHUB_TOKEN": "ghs_token"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_BRANCH")
}

func TestRedacted(t *testing.T) {
	rec, err := Assemble(lintEnv(), StaticSecrets{"GITHUB_TOKEN": "ghs_token"})
	require.NoError(t, err)

	redacted := rec.Redacted()
	assert.Equal(t, "***", redacted["GITHUB_TOKEN"])
	assert.Equal(t, "main", redacted["DEFAULT_BRANCH"])
	assert.NotContains(t, redacted, "ghs_token")
}

func TestEnvSecrets(t *testing.T) {
	src := EnvSecrets{Getenv: func(name string) string {
		if name == "GITHUB_TOKEN" {
			return "from-env"
		}
		return ""
	}}

	v, err := src.Secret("GITHUB_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = src.Secret("OTHER")
	assert.True(t, errors.Is(err, ErrSecretUnavailable))
}
