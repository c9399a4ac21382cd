// Package testrun implements the step/test state machine:
// Pending -> SetupRunning -> Running(step i of N) -> TeardownRunning ->
// Completed(verdict), with guaranteed teardown and the priority given to
// skip_if/require short-circuiting. Every step records a result, including
// a step skipped after an earlier one failed — "always record, never silently drop a result" governs
// setup -> steps -> teardown, with the guaranteed-teardown rule on top.
package testrun

import (
	"context"
	"time"

	"github.com/adamcooper1386/bintest/internal/action"
	"github.com/adamcooper1386/bintest/internal/assertion"
	"github.com/adamcooper1386/bintest/internal/condition"
	"github.com/adamcooper1386/bintest/internal/dbpool"
	"github.com/adamcooper1386/bintest/internal/fsdiff"
	"github.com/adamcooper1386/bintest/internal/interp"
	"github.com/adamcooper1386/bintest/internal/procrunner"
	"github.com/adamcooper1386/bintest/internal/result"
	"github.com/adamcooper1386/bintest/internal/sandbox"
	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

// Runner executes tests within one file's sandbox and DB pool.
type Runner struct {
	Sandbox       *sandbox.Sandbox
	Pool          *dbpool.Pool
	Env           map[string]string // effective file-level env, SANDBOX/BINARY already injected
	CaptureFSDiff bool
	Timeout       func(stepTimeout *time.Duration) time.Duration
	SpecDir       string // directory holding the owning spec file, for sql_file resolution
}

// RunTest executes one test end to end and returns its result.
func (r *Runner) RunTest(ctx context.Context, test *bspec.Test) result.Test {
	start := time.Now()
	tr := result.Test{Name: test.Name}
	evaluator := &condition.Evaluator{Env: r.Env, DB: r.Pool}

	if skip, err := evaluator.Any(ctx, test.SkipIf); err != nil {
		return errored(tr, start, err)
	} else if skip {
		return skipped(tr, start, "skip_if")
	}

	if ok, err := evaluator.All(ctx, test.Require); err != nil {
		return errored(tr, start, err)
	} else if !ok {
		return skipped(tr, start, "required")
	}

	if err := r.runActions(ctx, test.Setup); err != nil {
		tr.Verdict = result.Errored
		tr.Error = err.Error()
		r.runActions(ctx, test.Teardown)
		tr.DurationMs = time.Since(start).Milliseconds()
		return tr
	}

	priorFailed := false
	for _, step := range test.Steps {
		if priorFailed {
			tr.Steps = append(tr.Steps, result.Step{Name: step.Name, Verdict: result.Skipped})
			continue
		}
		sr := r.runStep(ctx, step)
		tr.Steps = append(tr.Steps, sr)
		if sr.Verdict != result.Passed {
			priorFailed = true
		}
	}

	teardownErr := r.runActions(ctx, test.Teardown)

	tr.Verdict = aggregateStepVerdict(tr.Steps)
	if teardownErr != nil {
		if tr.Verdict == result.Passed {
			tr.Verdict = result.Errored
		}
		tr.Error = teardownErr.Error()
	}
	tr.DurationMs = time.Since(start).Milliseconds()
	return tr
}

func (r *Runner) runStep(ctx context.Context, step *bspec.Step) result.Step {
	start := time.Now()
	sr := result.Step{Name: step.Name}

	if err := r.runActions(ctx, step.Setup); err != nil {
		sr.Verdict = result.Errored
		r.runActions(ctx, step.Teardown)
		sr.DurationMs = time.Since(start).Milliseconds()
		return sr
	}

	where := "step \"" + step.Name + "\""
	cmd, err := interp.Interpolate(step.Run.Cmd, r.Env, where+" cmd")
	if err == nil {
		var args []string
		args, err = interp.InterpolateAll(step.Run.Args, r.Env, where+" args")
		if err == nil {
			sr = r.runProcessAndAssert(ctx, step, cmd, args, sr)
		}
	}
	if err != nil {
		sr.Verdict = result.Errored
		r.runActions(ctx, step.Teardown)
		sr.DurationMs = time.Since(start).Milliseconds()
		return sr
	}

	teardownErr := r.runActions(ctx, step.Teardown)
	if teardownErr != nil && sr.Verdict == result.Passed {
		sr.Verdict = result.Errored
	}
	sr.DurationMs = time.Since(start).Milliseconds()
	return sr
}

func (r *Runner) runProcessAndAssert(ctx context.Context, step *bspec.Step, cmd string, args []string, sr result.Step) result.Step {
	env := overlay(r.Env, step.Run.Env)
	timeout := r.Timeout(step.Run.Timeout)

	var before fsdiff.Snapshot
	if r.CaptureFSDiff {
		before, _ = fsdiff.Capture(r.Sandbox.Root)
	}

	outcome, err := procrunner.Run(ctx, procrunner.Spec{
		Cmd:     cmd,
		Args:    args,
		Cwd:     r.Sandbox.Root,
		Env:     envSlice(env),
		Stdin:   step.Run.Stdin,
		Timeout: timeout,
	})
	if err != nil {
		sr.Verdict = result.Errored
		return sr
	}

	var diffPtr *result.FSDiff
	if r.CaptureFSDiff {
		after, _ := fsdiff.Capture(r.Sandbox.Root)
		d := fsdiff.Compute(before, after)
		diffPtr = &result.FSDiff{Created: d.Created, Modified: d.Modified, Deleted: d.Deleted}
	}

	results := assertion.Evaluate(ctx, step.Expect, outcome, r.Sandbox, r.Pool)
	sr.Assertions = toResultAssertions(results)
	sr.Captured = result.Captured{
		Stdout:   string(outcome.Stdout),
		Stderr:   string(outcome.Stderr),
		Exit:     outcome.Exit,
		Signal:   outcome.Signal,
		TimedOut: outcome.TimedOut,
		FSDiff:   diffPtr,
	}
	sr.Verdict = verdictFromAssertions(results)
	return sr
}

func (r *Runner) runActions(ctx context.Context, actions []bspec.Action) error {
	for _, a := range actions {
		if err := action.Execute(ctx, a, r.Sandbox, r.Pool, r.Env, r.SpecDir); err != nil {
			return err
		}
	}
	return nil
}

func errored(tr result.Test, start time.Time, err error) result.Test {
	tr.Verdict = result.Errored
	tr.Error = err.Error()
	tr.DurationMs = time.Since(start).Milliseconds()
	return tr
}

func skipped(tr result.Test, start time.Time, reason string) result.Test {
	tr.Verdict = result.Skipped
	tr.SkipReason = reason
	tr.DurationMs = time.Since(start).Milliseconds()
	return tr
}

func aggregateStepVerdict(steps []result.Step) result.Verdict {
	hasErrored, hasFailed := false, false
	for _, s := range steps {
		switch s.Verdict {
		case result.Errored:
			hasErrored = true
		case result.Failed:
			hasFailed = true
		}
	}
	switch {
	case hasErrored:
		return result.Errored
	case hasFailed:
		return result.Failed
	default:
		return result.Passed
	}
}

func verdictFromAssertions(results []assertion.Result) result.Verdict {
	hasErrored, hasFailed := false, false
	for _, a := range results {
		if a.Err != nil {
			hasErrored = true
			continue
		}
		if !a.Passed {
			hasFailed = true
		}
	}
	switch {
	case hasErrored:
		return result.Errored
	case hasFailed:
		return result.Failed
	default:
		return result.Passed
	}
}

func toResultAssertions(results []assertion.Result) []result.Assertion {
	out := make([]result.Assertion, len(results))
	for i, a := range results {
		verdict := "passed"
		errText := ""
		if a.Err != nil {
			verdict = "errored"
			errText = a.Err.Error()
		} else if !a.Passed {
			verdict = "failed"
		}
		out[i] = result.Assertion{
			Kind: a.Kind, Verdict: verdict,
			Expected: a.Expected, Actual: a.Actual, Error: errText,
		}
	}
	return out
}

func overlay(base, layer map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(layer))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range layer {
		out[k] = v
	}
	return out
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
