// Package action executes the tagged Action variant used in setup/teardown
// lists: each variant's handler is a free function over
// (sandbox, db_pool, env) -> ActionResult, one function per step kind over
// bintest's fixed eleven-member Action set.
package action

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bterrors "github.com/adamcooper1386/bintest/internal/errors"
	"github.com/adamcooper1386/bintest/internal/dbpool"
	"github.com/adamcooper1386/bintest/internal/fs"
	"github.com/adamcooper1386/bintest/internal/interp"
	"github.com/adamcooper1386/bintest/internal/procrunner"
	"github.com/adamcooper1386/bintest/internal/sandbox"
	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

// FS is the file system every write_file/create_dir/copy_*/remove_*
// action goes through. Tests substitute fs.NewMockFS() so action behavior
// can be verified without touching a real sandbox directory.
var FS fs.FS = fs.Default

// defaultRunTimeout bounds a Run action the same way a step's process gets
// a deadline; setup/teardown actions otherwise have no implicit one
//, but a completely unbounded exec.Cmd here would let one
// runaway action hang a whole file.
const defaultRunTimeout = 30 * time.Second

// Execute runs one action, interpolating every ${VAR} in its paths/contents
// against env first ("Interpolation is applied to ... action
// source/target paths, and action SQL contents"). specDir is the directory
// holding the spec file that declared this action, used to resolve
// sql_file's path so fixtures can travel alongside the file that
// references them rather than living in the sandbox. Errors are always
// returned wrapped in *bterrors.ActionError. A Sql action declaring
// on_error: continue has its failing statements skipped by the database
// client, so those per-statement failures never reach Execute.
func Execute(ctx context.Context, a bspec.Action, sb *sandbox.Sandbox, pool *dbpool.Pool, env map[string]string, specDir string) error {
	name := actionName(a.Kind)
	where := fmt.Sprintf("action %s", name)

	var err error
	switch a.Kind {
	case bspec.ActionWriteFile:
		err = writeFile(sb, a, env, where)
	case bspec.ActionCreateDir:
		err = createDir(sb, a, env, where)
	case bspec.ActionCopyFile:
		err = copyFile(sb, a, env, where)
	case bspec.ActionCopyDir:
		err = copyDir(sb, a, env, where)
	case bspec.ActionRemoveFile:
		err = removeFile(sb, a, env, where)
	case bspec.ActionRemoveDir:
		err = removeDir(sb, a, env, where)
	case bspec.ActionRun:
		err = runAction(ctx, sb, a, env, where)
	case bspec.ActionSql:
		return sqlAction(ctx, pool, a, env, where)
	case bspec.ActionSqlFile:
		err = sqlFileAction(ctx, specDir, pool, a, env, where)
	case bspec.ActionDbSnapshot:
		err = pool.With(a.Database, func(c dbpool.Client) error { return c.Snapshot(a.SnapshotName) })
	case bspec.ActionDbRestore:
		err = pool.With(a.Database, func(c dbpool.Client) error { return c.Restore(a.SnapshotName) })
	default:
		err = fmt.Errorf("unknown action kind %v", a.Kind)
	}

	if err != nil {
		return &bterrors.ActionError{Action: name, Underlying: err}
	}
	return nil
}

func actionName(k bspec.ActionKind) string {
	switch k {
	case bspec.ActionWriteFile:
		return "write_file"
	case bspec.ActionCreateDir:
		return "create_dir"
	case bspec.ActionCopyFile:
		return "copy_file"
	case bspec.ActionCopyDir:
		return "copy_dir"
	case bspec.ActionRemoveFile:
		return "remove_file"
	case bspec.ActionRemoveDir:
		return "remove_dir"
	case bspec.ActionRun:
		return "run"
	case bspec.ActionSql:
		return "sql"
	case bspec.ActionSqlFile:
		return "sql_file"
	case bspec.ActionDbSnapshot:
		return "db_snapshot"
	case bspec.ActionDbRestore:
		return "db_restore"
	default:
		return "unknown"
	}
}

func writeFile(sb *sandbox.Sandbox, a bspec.Action, env map[string]string, where string) error {
	path, err := interp.Interpolate(a.Path, env, where)
	if err != nil {
		return err
	}
	contents, err := interp.Interpolate(a.Contents, env, where)
	if err != nil {
		return err
	}
	abs, err := sb.Resolve(path)
	if err != nil {
		return err
	}
	if err := FS.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return FS.WriteFile(abs, []byte(contents), 0o644)
}

func createDir(sb *sandbox.Sandbox, a bspec.Action, env map[string]string, where string) error {
	path, err := interp.Interpolate(a.Path, env, where)
	if err != nil {
		return err
	}
	abs, err := sb.Resolve(path)
	if err != nil {
		return err
	}
	return FS.MkdirAll(abs, 0o755)
}

func copyFile(sb *sandbox.Sandbox, a bspec.Action, env map[string]string, where string) error {
	from, to, err := resolveFromTo(sb, a, env, where)
	if err != nil {
		return err
	}
	data, err := FS.ReadFile(from)
	if err != nil {
		return err
	}
	if err := FS.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	return FS.WriteFile(to, data, 0o644)
}

func copyDir(sb *sandbox.Sandbox, a bspec.Action, env map[string]string, where string) error {
	from, to, err := resolveFromTo(sb, a, env, where)
	if err != nil {
		return err
	}
	return filepath.WalkDir(from, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		target := filepath.Join(to, rel)
		if d.IsDir() {
			return FS.MkdirAll(target, 0o755)
		}
		data, err := FS.ReadFile(path)
		if err != nil {
			return err
		}
		if err := FS.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return FS.WriteFile(target, data, 0o644)
	})
}

func removeFile(sb *sandbox.Sandbox, a bspec.Action, env map[string]string, where string) error {
	path, err := interp.Interpolate(a.Path, env, where)
	if err != nil {
		return err
	}
	abs, err := sb.Resolve(path)
	if err != nil {
		return err
	}
	return FS.Remove(abs)
}

func removeDir(sb *sandbox.Sandbox, a bspec.Action, env map[string]string, where string) error {
	path, err := interp.Interpolate(a.Path, env, where)
	if err != nil {
		return err
	}
	abs, err := sb.Resolve(path)
	if err != nil {
		return err
	}
	return FS.RemoveAll(abs)
}

func resolveFromTo(sb *sandbox.Sandbox, a bspec.Action, env map[string]string, where string) (string, string, error) {
	from, err := interp.Interpolate(a.From, env, where)
	if err != nil {
		return "", "", err
	}
	to, err := interp.Interpolate(a.To, env, where)
	if err != nil {
		return "", "", err
	}
	absFrom, err := sb.Resolve(from)
	if err != nil {
		return "", "", err
	}
	absTo, err := sb.Resolve(to)
	if err != nil {
		return "", "", err
	}
	return absFrom, absTo, nil
}

func runAction(ctx context.Context, sb *sandbox.Sandbox, a bspec.Action, env map[string]string, where string) error {
	cmd, err := interp.Interpolate(a.Run.Cmd, env, where)
	if err != nil {
		return err
	}
	args, err := interp.InterpolateAll(a.Run.Args, env, where)
	if err != nil {
		return err
	}

	timeout := defaultRunTimeout
	if a.Run.Timeout != nil {
		timeout = *a.Run.Timeout
	}

	outcome, err := procrunner.Run(ctx, procrunner.Spec{
		Cmd:     cmd,
		Args:    args,
		Cwd:     sb.Root,
		Env:     envSlice(overlay(env, a.Run.Env)),
		Stdin:   a.Run.Stdin,
		Timeout: timeout,
	})
	if err != nil {
		return err
	}
	if outcome.Exit == nil || *outcome.Exit != 0 {
		return fmt.Errorf("command %q exited non-zero: %s", cmd, bytes.TrimSpace(outcome.Stderr))
	}
	return nil
}

func sqlAction(ctx context.Context, pool *dbpool.Pool, a bspec.Action, env map[string]string, where string) error {
	statements, err := interp.InterpolateAll(a.Statements, env, where)
	if err != nil {
		return &bterrors.ActionError{Action: actionName(a.Kind), Underlying: err}
	}
	continueOnError := a.OnError == bspec.SqlOnErrorContinue
	execErr := pool.With(a.Database, func(c dbpool.Client) error {
		return c.Execute(ctx, statements, continueOnError)
	})
	if execErr != nil {
		return &bterrors.ActionError{Action: actionName(a.Kind), Underlying: execErr}
	}
	return nil
}

func sqlFileAction(ctx context.Context, specDir string, pool *dbpool.Pool, a bspec.Action, env map[string]string, where string) error {
	path, err := interp.Interpolate(a.SqlFilePath, env, where)
	if err != nil {
		return err
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(specDir, path)
	}
	data, err := FS.ReadFile(abs)
	if err != nil {
		return err
	}
	contents, err := interp.Interpolate(string(data), env, where)
	if err != nil {
		return err
	}
	return pool.With(a.Database, func(c dbpool.Client) error {
		return c.Execute(ctx, []string{contents}, false)
	})
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
