package testrun

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamcooper1386/bintest/internal/config"
	"github.com/adamcooper1386/bintest/internal/dbpool"
	"github.com/adamcooper1386/bintest/internal/result"
	"github.com/adamcooper1386/bintest/internal/sandbox"
	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	sb, err := sandbox.New(bspec.SandboxPolicy{Kind: bspec.SandboxTemp}, t.Name(), "ts")
	require.NoError(t, err)
	t.Cleanup(func() { sb.Dispose() })

	return &Runner{
		Sandbox: sb,
		Pool:    dbpool.NewPool(nil),
		Env:     map[string]string{"PATH": os.Getenv("PATH"), "SANDBOX": sb.Root},
		Timeout: func(stepTimeout *time.Duration) time.Duration {
			if stepTimeout != nil {
				return *stepTimeout
			}
			return config.DefaultTimeout
		},
	}
}

func intp(v int) *int { return &v }

func TestRunTestSinglePassingStep(t *testing.T) {
	r := newRunner(t)
	test := &bspec.Test{
		Name: "echoes hello",
		Steps: []*bspec.Step{
			{
				Name: "run",
				Run:  bspec.RunSpec{Cmd: "echo", Args: []string{"hello"}},
				Expect: bspec.ExpectSpec{
					Exit:   intp(0),
					Stdout: &bspec.Matcher{Kind: bspec.MatchEquals, Value: "hello\n"},
				},
			},
		},
	}

	tr := r.RunTest(context.Background(), test)
	assert.Equal(t, result.Passed, tr.Verdict)
	require.Len(t, tr.Steps, 1)
	assert.Equal(t, result.Passed, tr.Steps[0].Verdict)
}

func TestRunTestFailingAssertionSkipsLaterSteps(t *testing.T) {
	r := newRunner(t)
	test := &bspec.Test{
		Name: "multi-step",
		Steps: []*bspec.Step{
			{
				Name:   "first",
				Run:    bspec.RunSpec{Cmd: "sh", Args: []string{"-c", "exit 1"}},
				Expect: bspec.ExpectSpec{Exit: intp(0)},
			},
			{
				Name:   "second",
				Run:    bspec.RunSpec{Cmd: "echo", Args: []string{"never"}},
				Expect: bspec.ExpectSpec{Exit: intp(0)},
			},
		},
	}

	tr := r.RunTest(context.Background(), test)
	assert.Equal(t, result.Failed, tr.Verdict)
	require.Len(t, tr.Steps, 2)
	assert.Equal(t, result.Failed, tr.Steps[0].Verdict)
	assert.Equal(t, result.Skipped, tr.Steps[1].Verdict)
}

func TestRunTestSkipIf(t *testing.T) {
	r := newRunner(t)
	test := &bspec.Test{
		Name:   "conditionally skipped",
		SkipIf: []bspec.Condition{{Kind: bspec.CondEnv, EnvName: "SANDBOX"}},
		Steps: []*bspec.Step{
			{Name: "run", Run: bspec.RunSpec{Cmd: "echo"}, Expect: bspec.ExpectSpec{Exit: intp(0)}},
		},
	}

	tr := r.RunTest(context.Background(), test)
	assert.Equal(t, result.Skipped, tr.Verdict)
	assert.Equal(t, "skip_if", tr.SkipReason)
}

func TestRunTestSetupAndTeardownActions(t *testing.T) {
	r := newRunner(t)
	test := &bspec.Test{
		Name:  "writes then reads a file",
		Setup: []bspec.Action{{Kind: bspec.ActionWriteFile, Path: "state.json", Contents: "{}"}},
		Steps: []*bspec.Step{
			{
				Name: "check",
				Run:  bspec.RunSpec{Cmd: "echo", Args: []string{"ok"}},
				Expect: bspec.ExpectSpec{
					Exit:  intp(0),
					Files: []bspec.FileAssertion{{Path: "state.json", Exists: true}},
				},
			},
		},
		Teardown: []bspec.Action{{Kind: bspec.ActionRemoveFile, Path: "state.json"}},
	}

	tr := r.RunTest(context.Background(), test)
	assert.Equal(t, result.Passed, tr.Verdict)
}
