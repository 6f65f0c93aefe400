package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/twentyfive/pkg/adapters/process"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hooks are exercised through sh")
	}
}

func commitEvent(kind domain.Kind) *domain.OperationEvent {
	return &domain.OperationEvent{
		InstanceID: "inst",
		Kind:       kind,
		Verb:       domain.VerbAdd,
		Mode:       domain.ModeWriter,
		Diff: &domain.ListDiff{
			InstanceID: "inst",
			Kind:       kind,
			Revision:   3,
			Items:      []string{"a"},
			Added:      []string{"a"},
		},
	}
}

func TestNotifier_Notify(t *testing.T) {
	skipOnWindows(t)

	n := process.NewNotifier([]process.Command{
		{Name: "stdin", Command: "sh", Args: []string{"-c", "cat"}},
		{Name: "env", Command: "sh", Args: []string{"-c", "echo $TWENTYFIVE_INSTANCE $TWENTYFIVE_KIND $TWENTYFIVE_REVISION $GREETING"}, Environment: map[string]string{"GREETING": "hi"}},
	})

	results := n.Notify(context.Background(), commitEvent(domain.KindGoals))
	require.Len(t, results, 2)

	require.NoError(t, results[0].Err)
	assert.JSONEq(t, `{"instance_id":"inst","kind":"goals","revision":3,"items":["a"],"added":["a"]}`, results[0].Output)

	require.NoError(t, results[1].Err)
	assert.Equal(t, "inst goals 3 hi", results[1].Output)
}

func TestNotifier_KindFilter(t *testing.T) {
	skipOnWindows(t)

	n := process.NewNotifier([]process.Command{
		{Name: "tasks-only", Command: "sh", Args: []string{"-c", "echo ok"}, Kinds: []string{"tasks"}},
	})

	assert.Empty(t, n.Notify(context.Background(), commitEvent(domain.KindGoals)))
	assert.Len(t, n.Notify(context.Background(), commitEvent(domain.KindTasks)), 1)
}

func TestNotifier_Failures(t *testing.T) {
	skipOnWindows(t)

	n := process.NewNotifier([]process.Command{
		{Name: "exit", Command: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}},
		{Name: "slow", Command: "sh", Args: []string{"-c", "sleep 5"}},
	}, process.WithTimeout(100*time.Millisecond))

	results := n.Notify(context.Background(), commitEvent(domain.KindGoals))
	require.Len(t, results, 2)
	assert.ErrorContains(t, results[0].Err, "boom")
	assert.Error(t, results[1].Err)
	assert.Less(t, results[1].Duration, 5*time.Second)
}

func TestNotifier_HooksSkipUnchanged(t *testing.T) {
	skipOnWindows(t)

	out := filepath.Join(t.TempDir(), "calls")
	n := process.NewNotifier([]process.Command{
		{Name: "append", Command: "sh", Args: []string{"-c", "echo $TWENTYFIVE_VERB >> " + out}},
	})
	hook := n.Hooks().OnCommit
	require.NotNil(t, hook)

	hook(context.Background(), commitEvent(domain.KindGoals))
	hook(context.Background(), &domain.OperationEvent{InstanceID: "inst", Kind: domain.KindGoals, Verb: domain.VerbAdd})
	n.Wait()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "add\n", string(data))
}

func TestLoadCommands(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing File", func(t *testing.T) {
		cmds, err := process.LoadCommands(filepath.Join(dir, "nope.yaml"))
		require.NoError(t, err)
		assert.Empty(t, cmds)
	})

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "hooks.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
commands:
  - command: /usr/bin/notify-send
    args: ["twentyfive"]
    kinds: [goals]
  - name: audit
    command: ./audit.sh
    env:
      AUDIT_LOG: audit.log
`), 0o644))

		cmds, err := process.LoadCommands(path)
		require.NoError(t, err)
		require.Len(t, cmds, 2)
		assert.Equal(t, "notify-send", cmds[0].Name)
		assert.Equal(t, []string{"goals"}, cmds[0].Kinds)
		assert.Equal(t, "audit.log", cmds[1].Environment["AUDIT_LOG"])
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "hooks.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"commands":[{"name":"log","command":"logger"}]}`), 0o644))

		cmds, err := process.LoadCommands(path)
		require.NoError(t, err)
		require.Len(t, cmds, 1)
		assert.Equal(t, "logger", cmds[0].Command)
	})

	t.Run("Command Required", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("commands:\n  - name: empty\n"), 0o644))

		_, err := process.LoadCommands(path)
		assert.ErrorContains(t, err, "command is required")
	})
}
