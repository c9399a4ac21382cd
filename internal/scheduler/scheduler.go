// Package scheduler orchestrates a whole run: suite -> files -> tests
//. Files run in a bounded worker pool (parallel unless
// suite.Serial); within a file, serial tests run first in declaration
// order, then the remaining tests run in another bounded pool. Groups run
// to completion one at a time (serial group, then parallel group) using
// golang.org/x/sync/errgroup for the bounded, context-cancelable pool
// within each group.
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/adamcooper1386/bintest/internal/action"
	"github.com/adamcooper1386/bintest/internal/config"
	"github.com/adamcooper1386/bintest/internal/dbpool"
	"github.com/adamcooper1386/bintest/internal/obs"
	"github.com/adamcooper1386/bintest/internal/result"
	"github.com/adamcooper1386/bintest/internal/sandbox"
	bspec "github.com/adamcooper1386/bintest/internal/spec"
	"github.com/adamcooper1386/bintest/internal/testrun"
)

// Options configures one run (run flags, minus rendering).
type Options struct {
	Filter       string // substring match on test names
	FileGlob     string // glob on file paths
	RunTimestamp string // ISO-8601 stamp used for sandbox_dir: local layout
	Jobs         int    // 0 = runtime.NumCPU()
}

// Scheduler runs a validated suite to completion.
type Scheduler struct {
	Suite *bspec.Suite
	Opts  Options
}

// Run executes the whole suite and returns its result tree.
// ctx cancellation (e.g. from SIGINT) stops new tests/files from starting;
// already-started tests and files still run their teardown, and the
// returned tree is marked Canceled.
func (s *Scheduler) Run(ctx context.Context) result.Suite {
	var rs result.Suite

	obs.Info("run starting", "files", len(s.Suite.Files))

	suiteSandbox, err := sandbox.New(s.Suite.SandboxDir, "suite", s.Opts.RunTimestamp)
	if err != nil {
		rs.Error = err.Error()
		return rs
	}
	defer func() {
		if err := suiteSandbox.Dispose(); err != nil {
			obs.Warn("suite sandbox disposal failed", "err", err)
		}
	}()

	suitePool := dbpool.NewPool(s.Suite.Databases)
	defer func() {
		if err := suitePool.Close(); err != nil {
			obs.Warn("suite db pool close failed", "err", err)
		}
	}()

	suiteEnv := s.Suite.Env
	if suiteEnv == nil {
		suiteEnv = map[string]string{}
	}

	if err := runActions(ctx, s.Suite.Setup, suiteSandbox, suitePool, suiteEnv, ""); err != nil {
		rs.Error = err.Error()
		runActions(ctx, s.Suite.Teardown, suiteSandbox, suitePool, suiteEnv, "")
		return rs
	}

	files := s.filterFiles(s.Suite.Files)
	fileResults := make([]result.File, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobLimit(s.Suite.Serial))
	started := 0
	for i, f := range files {
		if ctx.Err() != nil {
			break
		}
		started++
		i, f := i, f
		g.Go(func() error {
			fileResults[i] = s.runFile(gctx, f)
			return nil
		})
	}
	g.Wait()
	rs.Files = fileResults[:started]

	if err := runActions(ctx, s.Suite.Teardown, suiteSandbox, suitePool, suiteEnv, ""); err != nil && rs.Error == "" {
		rs.Error = err.Error()
	}
	rs.Canceled = ctx.Err() != nil
	obs.Info("run finished", "canceled", rs.Canceled)
	return rs
}

func (s *Scheduler) jobLimit(forceSerial bool) int {
	if forceSerial {
		return 1
	}
	if s.Opts.Jobs > 0 {
		return s.Opts.Jobs
	}
	return runtime.NumCPU()
}

func (s *Scheduler) runFile(ctx context.Context, f *bspec.File) result.File {
	fr := result.File{Path: f.Path}
	resolver := &config.Resolver{Suite: s.Suite, File: f}
	flog := obs.With("file", f.Path)
	flog.Debug("file starting")

	sb, err := sandbox.New(resolver.SandboxPolicy(), fileStem(f.Path), s.Opts.RunTimestamp)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}
	defer func() {
		if err := sb.Dispose(); err != nil {
			flog.Warn("sandbox disposal failed", "err", err)
		}
	}()

	pool := dbpool.NewPool(resolver.Databases())
	defer func() {
		if err := pool.Close(); err != nil {
			flog.Warn("db pool close failed", "err", err)
		}
	}()

	env := s.effectiveEnv(resolver, sb)
	specDir := filepath.Dir(f.Path)

	if err := runActions(ctx, f.Setup, sb, pool, env, specDir); err != nil {
		fr.Error = err.Error()
		runActions(ctx, f.Teardown, sb, pool, env, specDir)
		return fr
	}

	if err := pool.SnapshotPostSetup(); err != nil {
		fr.Error = err.Error()
		runActions(ctx, f.Teardown, sb, pool, env, specDir)
		return fr
	}

	runner := &testrun.Runner{
		Sandbox:       sb,
		Pool:          pool,
		Env:           env,
		CaptureFSDiff: resolver.CaptureFSDiff(),
		Timeout:       resolver.Timeout,
		SpecDir:       specDir,
	}

	tests := s.filterTests(f.Tests)
	serialTests, parallelTests := partitionTests(tests)

	var testResults []result.Test
	for _, t := range serialTests {
		if ctx.Err() != nil {
			break
		}
		pool.RestorePostSetup()
		testResults = append(testResults, runner.RunTest(ctx, t))
	}

	if len(parallelTests) > 0 {
		out := make([]result.Test, len(parallelTests))
		pg, pgctx := errgroup.WithContext(ctx)
		pg.SetLimit(s.jobLimit(false))
		launched := 0
		for i, t := range parallelTests {
			if ctx.Err() != nil {
				break
			}
			launched++
			i, t := i, t
			pg.Go(func() error {
				// per_file isolation restores are serialized per logical
				// database inside pool.With; running this concurrently with
				// another test's own restore only races when two non-serial
				// tests in the same file both touch a per_file database —
				// authors should mark such tests serial.
				pool.RestorePostSetup()
				out[i] = runner.RunTest(pgctx, t)
				return nil
			})
		}
		pg.Wait()
		testResults = append(testResults, out[:launched]...)
	}
	fr.Tests = testResults

	if err := runActions(ctx, f.Teardown, sb, pool, env, specDir); err != nil && fr.Error == "" {
		fr.Error = err.Error()
	}
	flog.Debug("file finished", "tests", len(fr.Tests))
	return fr
}

func (s *Scheduler) effectiveEnv(resolver *config.Resolver, sb *sandbox.Sandbox) map[string]string {
	env := map[string]string{}
	if resolver.InheritEnv(nil) {
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				env[k] = v
			}
		}
	}
	for k, v := range resolver.BaseEnv() {
		env[k] = v
	}
	env[sandbox.EnvKey] = sb.Root
	if bin := resolver.Binary(); bin != "" {
		env["BINARY"] = bin
	}
	return env
}

func (s *Scheduler) filterFiles(files []*bspec.File) []*bspec.File {
	if s.Opts.FileGlob == "" {
		return files
	}
	var out []*bspec.File
	for _, f := range files {
		if ok, _ := filepath.Match(s.Opts.FileGlob, f.Path); ok {
			out = append(out, f)
		}
	}
	return out
}

func (s *Scheduler) filterTests(tests []*bspec.Test) []*bspec.Test {
	if s.Opts.Filter == "" {
		return tests
	}
	var out []*bspec.Test
	for _, t := range tests {
		if strings.Contains(t.Name, s.Opts.Filter) {
			out = append(out, t)
		}
	}
	return out
}

func partitionTests(tests []*bspec.Test) (serial, parallel []*bspec.Test) {
	for _, t := range tests {
		if t.Serial {
			serial = append(serial, t)
		} else {
			parallel = append(parallel, t)
		}
	}
	return serial, parallel
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runActions(ctx context.Context, actions []bspec.Action, sb *sandbox.Sandbox, pool *dbpool.Pool, env map[string]string, specDir string) error {
	for _, a := range actions {
		if err := action.Execute(ctx, a, sb, pool, env, specDir); err != nil {
			return err
		}
	}
	return nil
}
