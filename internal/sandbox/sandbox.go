// Package sandbox creates, bind-injects, and disposes the isolated working
// directory every file owns for the lifetime of its run.
//
// Layout under sandbox_dir: bintest writes
// ".bintest/<run-timestamp>/<file-stem>/" under a dated directory it owns,
// one directory per spec file.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bterrors "github.com/adamcooper1386/bintest/internal/errors"
	"github.com/adamcooper1386/bintest/internal/spec"
)

// EnvKey is the environment variable every process launched inside a
// Sandbox receives, set to the sandbox's absolute root.
const EnvKey = "SANDBOX"

// Sandbox is one file's isolated working directory.
type Sandbox struct {
	Root   string
	policy spec.SandboxPolicy
}

// New creates a sandbox per the resolved policy:
//   - temp: a fresh directory under the OS temp dir
//   - local: ".bintest/<runTimestamp>/<fileStem>/" relative to cwd
//   - an explicit path: "<path>/<fileStem>/", created if absent, never erased
func New(policy spec.SandboxPolicy, fileStem, runTimestamp string) (*Sandbox, error) {
	switch policy.Kind {
	case spec.SandboxTemp:
		root, err := os.MkdirTemp("", "bintest-"+sanitize(fileStem)+"-")
		if err != nil {
			return nil, &bterrors.SandboxError{Path: root, Op: "create", Err: err}
		}
		return &Sandbox{Root: root, policy: policy}, nil

	case spec.SandboxLocal:
		root := filepath.Join(".bintest", runTimestamp, sanitize(fileStem))
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, &bterrors.SandboxError{Path: root, Op: "create", Err: err}
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, &bterrors.SandboxError{Path: root, Op: "create", Err: err}
		}
		return &Sandbox{Root: abs, policy: policy}, nil

	case spec.SandboxPath:
		root := filepath.Join(policy.Path, sanitize(fileStem))
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, &bterrors.SandboxError{Path: root, Op: "create", Err: err}
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, &bterrors.SandboxError{Path: root, Op: "create", Err: err}
		}
		return &Sandbox{Root: abs, policy: policy}, nil

	default:
		return nil, &bterrors.SandboxError{Op: "create", Err: fmt.Errorf("unknown sandbox policy %v", policy.Kind)}
	}
}

// Dispose runs after file teardown. Under "temp" it removes
// the directory tree best-effort: failure is returned to the caller to log,
// never to fail the suite. Under "local" or an explicit path, the sandbox is
// preserved.
func (s *Sandbox) Dispose() error {
	if s.policy.Kind != spec.SandboxTemp {
		return nil
	}
	if err := os.RemoveAll(s.Root); err != nil {
		return &bterrors.SandboxError{Path: s.Root, Op: "dispose", Err: err}
	}
	return nil
}

// Resolve turns a sandbox-relative path into an absolute one, rejecting
// paths that would escape the sandbox root ("absolute paths are
// rejected at validation unless explicitly allowed"; this is the runtime
// side of that same rule — any ".." climb that exits Root is also
// rejected).
func (s *Sandbox) Resolve(relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", fmt.Errorf("path %q must be sandbox-relative, not absolute", relPath)
	}
	joined := filepath.Join(s.Root, relPath)
	rel, err := filepath.Rel(s.Root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the sandbox root", relPath)
	}
	return joined, nil
}

// sanitize trims characters that would be awkward in a directory name
// (spec path, slashes) down to a usable stem.
func sanitize(stem string) string {
	base := filepath.Base(stem)
	out := make([]rune, 0, len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "file"
	}
	return string(out)
}
