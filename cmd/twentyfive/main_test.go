package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--backend", "file", "--store-path", dir, "--instance", "cli", "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_ListCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	_, err := run(t, dir, "create", "--kind", "goals")
	require.NoError(t, err)

	for _, item := range []string{"learn spanish", "visit japan", "run a marathon"} {
		_, err := run(t, dir, "add", "--kind", "goals", item)
		require.NoError(t, err)
	}
	_, err = run(t, dir, "move", "--kind", "goals", "run a marathon", "0")
	require.NoError(t, err)
	_, err = run(t, dir, "delete", "--kind", "goals", "learn spanish")
	require.NoError(t, err)

	out, err := run(t, dir, "list", "--kind", "goals")
	require.NoError(t, err)
	assert.Equal(t, "run a marathon\nvisit japan\n", out)

	out, err = run(t, dir, "instances")
	require.NoError(t, err)
	assert.Equal(t, "cli\n", out)
}

func TestCLI_Errors(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	_, err := run(t, dir, "add", "--kind", "chores", "x")
	assert.ErrorContains(t, err, "unknown")

	_, err = run(t, dir, "move", "--kind", "goals", "x", "first")
	assert.ErrorContains(t, err, "not a number")

	_, err = run(t, dir, "delete", "--kind", "tasks", "ghost")
	assert.Error(t, err)
}

func TestCLI_DashArguments(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	_, err := run(t, dir, "add", "--kind", "goals", "a")
	require.NoError(t, err)
	_, err = run(t, dir, "add", "--kind", "goals", "-b")
	require.NoError(t, err)

	_, err = run(t, dir, "move", "--kind", "goals", "a", "-1")
	assert.ErrorIs(t, err, domain.ErrInvalidIndex)

	_, err = run(t, dir, "delete", "--kind", "goals", "-b")
	require.NoError(t, err)

	out, err := run(t, dir, "list", "--kind", "goals")
	require.NoError(t, err)
	assert.Equal(t, "a\n", out)
}

func TestCLI_Version(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "twentyfive version "))
}
