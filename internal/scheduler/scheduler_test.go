package scheduler

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamcooper1386/bintest/internal/result"
	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

func intp(v int) *int { return &v }

func TestSchedulerRunsFileWithSerialAndParallelTests(t *testing.T) {
	suite := &bspec.Suite{
		SandboxDir: bspec.SandboxPolicy{Kind: bspec.SandboxTemp},
		Env:        map[string]string{"PATH": os.Getenv("PATH")},
		Files: []*bspec.File{
			{
				Path: "sample.yaml",
				Tests: []*bspec.Test{
					{
						Name:   "first serial",
						Serial: true,
						Steps: []*bspec.Step{
							{Name: "run", Run: bspec.RunSpec{Cmd: "echo", Args: []string{"one"}}, Expect: bspec.ExpectSpec{Exit: intp(0)}},
						},
					},
					{
						Name: "parallel a",
						Steps: []*bspec.Step{
							{Name: "run", Run: bspec.RunSpec{Cmd: "echo", Args: []string{"two"}}, Expect: bspec.ExpectSpec{Exit: intp(0)}},
						},
					},
					{
						Name: "parallel b",
						Steps: []*bspec.Step{
							{Name: "run", Run: bspec.RunSpec{Cmd: "echo", Args: []string{"three"}}, Expect: bspec.ExpectSpec{Exit: intp(0)}},
						},
					},
				},
			},
		},
	}

	s := &Scheduler{Suite: suite, Opts: Options{RunTimestamp: "20260730T000000Z"}}
	rs := s.Run(context.Background())

	require.Len(t, rs.Files, 1)
	require.Len(t, rs.Files[0].Tests, 3)
	for _, tr := range rs.Files[0].Tests {
		assert.Equal(t, result.Passed, tr.Verdict, tr.Name)
	}
}

func TestSchedulerFilterByTestName(t *testing.T) {
	suite := &bspec.Suite{
		SandboxDir: bspec.SandboxPolicy{Kind: bspec.SandboxTemp},
		Env:        map[string]string{"PATH": os.Getenv("PATH")},
		Files: []*bspec.File{
			{
				Path: "sample.yaml",
				Tests: []*bspec.Test{
					{Name: "wanted", Steps: []*bspec.Step{{Name: "run", Run: bspec.RunSpec{Cmd: "echo"}, Expect: bspec.ExpectSpec{Exit: intp(0)}}}},
					{Name: "other", Steps: []*bspec.Step{{Name: "run", Run: bspec.RunSpec{Cmd: "echo"}, Expect: bspec.ExpectSpec{Exit: intp(0)}}}},
				},
			},
		},
	}

	s := &Scheduler{Suite: suite, Opts: Options{RunTimestamp: "20260730T000000Z", Filter: "wanted"}}
	rs := s.Run(context.Background())

	require.Len(t, rs.Files[0].Tests, 1)
	assert.Equal(t, "wanted", rs.Files[0].Tests[0].Name)
}

func TestSchedulerFileSetupFailureRecorded(t *testing.T) {
	suite := &bspec.Suite{
		SandboxDir: bspec.SandboxPolicy{Kind: bspec.SandboxTemp},
		Files: []*bspec.File{
			{
				Path:  "broken.yaml",
				Setup: []bspec.Action{{Kind: bspec.ActionRemoveFile, Path: "does-not-exist.txt"}},
				Tests: []*bspec.Test{{Name: "never runs"}},
			},
		},
	}

	s := &Scheduler{Suite: suite, Opts: Options{RunTimestamp: "20260730T000000Z"}}
	rs := s.Run(context.Background())

	require.Len(t, rs.Files, 1)
	assert.NotEmpty(t, rs.Files[0].Error)
	assert.Empty(t, rs.Files[0].Tests)
}
