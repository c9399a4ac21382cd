package procrunner

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostEnv() []string {
	return append([]string{}, os.Environ()...)
}

func TestRunCapturesExitAndStreams(t *testing.T) {
	outcome, err := Run(context.Background(), Spec{
		Cmd:  "echo",
		Args: []string{"hello"},
		Cwd:  t.TempDir(),
		Env:  hostEnv(),
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Exit)
	assert.Equal(t, 0, *outcome.Exit)
	assert.Equal(t, "hello\n", string(outcome.Stdout))
	assert.False(t, outcome.TimedOut)
}

func TestRunCapturesNonZeroExit(t *testing.T) {
	outcome, err := Run(context.Background(), Spec{
		Cmd:  "sh",
		Args: []string{"-c", "exit 7"},
		Cwd:  t.TempDir(),
		Env:  hostEnv(),
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Exit)
	assert.Equal(t, 7, *outcome.Exit)
	assert.Nil(t, outcome.Signal)
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), Spec{
		Cmd: "definitely-not-a-real-binary-xyz",
		Cwd: t.TempDir(),
		Env: hostEnv(),
	})
	require.Error(t, err)
}

func TestRunTimeout(t *testing.T) {
	outcome, err := Run(context.Background(), Spec{
		Cmd:     "sh",
		Args:    []string{"-c", "sleep 5"},
		Cwd:     t.TempDir(),
		Env:     hostEnv(),
		Timeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.True(t, outcome.TimedOut)
	assert.Less(t, outcome.Duration, 2*time.Second)
}

func TestRunStdin(t *testing.T) {
	outcome, err := Run(context.Background(), Spec{
		Cmd:   "cat",
		Cwd:   t.TempDir(),
		Env:   hostEnv(),
		Stdin: []byte("piped in"),
	})
	require.NoError(t, err)
	assert.Equal(t, "piped in", string(outcome.Stdout))
}
