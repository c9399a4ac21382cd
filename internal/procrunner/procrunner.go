// Package procrunner launches the process under test with an explicit
// env/cwd/stdin/timeout and captures its exit, signal, and streams. It
// builds *exec.Cmd with a plain os/exec call, an explicit Dir, and no
// shell interposition, adding a deadline, SIGTERM->SIGKILL escalation, and
// split stdout/stderr capture on top.
package procrunner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	bterrors "github.com/adamcooper1386/bintest/internal/errors"
)

// GracePeriod is how long a timed-out child gets between SIGTERM and
// SIGKILL.
const GracePeriod = 250 * time.Millisecond

// Spec is the resolved, already-interpolated description of a process to
// launch.
type Spec struct {
	Cmd     string
	Args    []string
	Cwd     string
	Env     []string // "KEY=VALUE" pairs; already reflects inherit_env
	Stdin   []byte
	Timeout time.Duration
}

// Outcome is the captured result of running a child process.
type Outcome struct {
	Exit     *int
	Signal   *int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
	TimedOut bool
}

// Run launches the child described by s. It never returns a *ProcessError
// for a child that simply exits non-zero — that is a normal Outcome, not an
// infrastructure error. A *ProcessError is returned only when the binary
// cannot be found or spawned. A wait failure that is not an exit status is
// not reported as an error: the Outcome then has neither Exit nor Signal set.
func Run(ctx context.Context, s Spec) (Outcome, error) {
	resolved, err := resolveBinary(s.Cmd, s.Env)
	if err != nil {
		return Outcome{}, &bterrors.ProcessError{Kind: bterrors.ProcessNotFound, Command: s.Cmd, Err: err}
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if s.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := exec.Command(resolved, s.Args...)
	cmd.Dir = s.Cwd
	cmd.Env = s.Env
	if len(s.Stdin) > 0 {
		cmd.Stdin = bytes.NewReader(s.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Run the child in its own process group so the grace-period signal
	// delivery below can reach any children it spawns too.
	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{}, &bterrors.ProcessError{Kind: bterrors.ProcessSpawnFailed, Command: s.Cmd, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	timedOut := false

	select {
	case waitErr = <-done:
	case <-runCtx.Done():
		timedOut = errors.Is(runCtx.Err(), context.DeadlineExceeded)
		terminate(cmd)
		select {
		case waitErr = <-done:
		case <-time.After(GracePeriod):
			kill(cmd)
			waitErr = <-done
		}
	}

	duration := time.Since(start)

	exitCode, signalNum := classify(waitErr)

	return Outcome{
		Exit:     exitCode,
		Signal:   signalNum,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
		TimedOut: timedOut,
	}, nil
}

// classify turns the result of cmd.Wait() into an (exit, signal) pair: the
// outcome record is {exit: int | null, signal: int | null, ...}
// — exactly one of the two is set for any terminated process.
func classify(waitErr error) (exit *int, signal *int) {
	if waitErr == nil {
		zero := 0
		return &zero, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		status, ok := exitErr.Sys().(syscall.WaitStatus)
		if !ok {
			code := exitErr.ExitCode()
			return &code, nil
		}
		if status.Signaled() {
			sig := int(status.Signal())
			return nil, &sig
		}
		code := status.ExitStatus()
		return &code, nil
	}

	return nil, nil
}

// resolveBinary implements binary resolution rule: an absolute
// cmd is used as-is; otherwise PATH is consulted from the effective env
// map, never the host's (os/exec.LookPath always reads the host's PATH,
// which is wrong here since the effective env may have cleared or
// overridden it when inherit_env is false).
func resolveBinary(cmd string, env []string) (string, error) {
	if filepath.IsAbs(cmd) {
		info, err := os.Stat(cmd)
		if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
			return "", os.ErrNotExist
		}
		return cmd, nil
	}

	pathVar := ""
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			pathVar = kv[len("PATH="):]
			break
		}
	}

	for _, dir := range filepath.SplitList(pathVar) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, cmd)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode()&0o111 != 0 {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}
