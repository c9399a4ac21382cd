// Package errors defines bintest's structured error taxonomy.
//
// Every kind below carries a typed payload rather than a bare string so that
// the result tree (internal/result) can surface structured diagnostics and
// the CLI can distinguish an assertion failure from an infrastructure error
// without string matching.
package errors

import (
	"fmt"
	"net/url"
	"strings"
)

// SpecError reports a load/validation failure. It aborts the entire run
// before any execution begins.
type SpecError struct {
	Path    string // spec file path, if known
	Field   string // dotted field path, e.g. "suite.files[0].tests[1]"
	Problem string
}

func (e *SpecError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Field, e.Problem)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Problem)
}

// InterpolationError reports a "${NAME}" that has no value in the enclosing
// effective environment.
type InterpolationError struct {
	Name  string
	Where string // e.g. "step \"create user\" cmd"
}

func (e *InterpolationError) Error() string {
	return fmt.Sprintf("undefined variable ${%s} in %s", e.Name, e.Where)
}

// SandboxError reports failure to create or dispose a sandbox root.
type SandboxError struct {
	Path string
	Op   string // "create" | "dispose"
	Err  error
}

func (e *SandboxError) Error() string {
	return fmt.Sprintf("sandbox %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *SandboxError) Unwrap() error { return e.Err }

// ActionError reports a failed setup/teardown action.
type ActionError struct {
	Action     string // action kind, e.g. "write_file"
	Underlying error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s failed: %v", e.Action, e.Underlying)
}

func (e *ActionError) Unwrap() error { return e.Underlying }

// ProcessErrorKind distinguishes the three ways launching a child can fail.
type ProcessErrorKind int

const (
	ProcessNotFound ProcessErrorKind = iota
	ProcessSpawnFailed
	ProcessIOFailed
)

func (k ProcessErrorKind) String() string {
	switch k {
	case ProcessNotFound:
		return "not_found"
	case ProcessSpawnFailed:
		return "spawn_failed"
	case ProcessIOFailed:
		return "io_failed"
	default:
		return "unknown"
	}
}

// ProcessError reports a failure to launch or interact with a child process.
// It is distinct from a test failure: it always marks the step Errored.
type ProcessError struct {
	Kind    ProcessErrorKind
	Command string
	Err     error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process %s (%s): %v", e.Kind, e.Command, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// AssertionFailure reports an assertion that did not hold. It marks the step
// Failed, never Errored.
type AssertionFailure struct {
	Kind     string
	Expected string
	Actual   string
	Context  string
}

func (e *AssertionFailure) Error() string {
	return fmt.Sprintf("%s assertion failed%s: expected %q, got %q", e.Kind, context(e.Context), e.Expected, e.Actual)
}

func context(c string) string {
	if c == "" {
		return ""
	}
	return " (" + c + ")"
}

// SqlError reports a driver-level failure. The query is preserved verbatim;
// any URL embedded in the underlying error is masked before this error is
// ever constructed (see MaskURL), so every consumer of the result tree sees
// masked data, not just the renderer.
type SqlError struct {
	Query      string
	Database   string
	Underlying error
}

func (e *SqlError) Error() string {
	return fmt.Sprintf("sql error on database %q: %v\nquery: %s", e.Database, e.Underlying, e.Query)
}

func (e *SqlError) Unwrap() error { return e.Underlying }

// UnsupportedAction reports a snapshot/restore (or other optional driver
// capability) invoked against a driver that does not advertise it.
type UnsupportedAction struct {
	Driver string
	Action string
}

func (e *UnsupportedAction) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Driver, e.Action)
}

// TimeoutError reports a child that hit its deadline.
type TimeoutError struct {
	Deadline string // human-readable duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("process exceeded timeout of %s", e.Deadline)
}

// Canceled reports that the suite received an external cancel signal
// (SIGINT to the host process).
type Canceled struct{}

func (e *Canceled) Error() string { return "run canceled" }

// MaskURL replaces the password segment of a database URL with "****".
// Masking happens at error-payload construction time (here), not at render
// time, so every consumer of the result tree — not just the human renderer —
// sees masked data ("Secret masking").
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return maskByPattern(raw)
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "****")
	return u.String()
}

// maskByPattern is a fallback for URL-ish strings url.Parse chokes on (e.g.
// "sqlite:///path" variants with unusual encodings) — it masks anything that
// looks like "user:password@" without requiring a fully valid URL.
func maskByPattern(raw string) string {
	at := strings.Index(raw, "@")
	if at < 0 {
		return raw
	}
	colon := strings.LastIndex(raw[:at], ":")
	schemeEnd := strings.Index(raw, "://")
	if colon < 0 || (schemeEnd >= 0 && colon <= schemeEnd+2) {
		return raw
	}
	return raw[:colon+1] + "****" + raw[at:]
}

// MaskInText masks every occurrence of rawURL's password within an arbitrary
// string (e.g. a driver error message that echoes the DSN).
func MaskInText(text, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return text
	}
	pass, ok := u.User.Password()
	if !ok || pass == "" {
		return text
	}
	return strings.ReplaceAll(text, pass, "****")
}

// MaskErr wraps err with its message run through MaskInText against rawURL,
// for driver errors (pgx dial failures, in particular) that can echo the
// raw DSN verbatim. Returns nil for a nil err.
func MaskErr(err error, rawURL string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s", MaskInText(err.Error(), rawURL))
}
