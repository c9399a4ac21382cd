package specyaml

import (
	"fmt"
	"time"

	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

func (r rawSuite) toSuite() (*bspec.Suite, error) {
	s := &bspec.Suite{
		Binary:        r.Binary,
		Env:           r.Env,
		InheritEnv:    r.InheritEnv,
		Serial:        r.Serial,
		CaptureFSDiff: r.CaptureFSDiff,
	}

	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return nil, fmt.Errorf("suite.timeout: %w", err)
		}
		s.Timeout = d
	} else {
		s.Timeout = 3 * time.Second
	}

	policy, err := parseSandboxPolicy(r.SandboxDir)
	if err != nil {
		return nil, fmt.Errorf("suite.sandbox_dir: %w", err)
	}
	s.SandboxDir = policy

	setup, err := decodeActions(r.Setup)
	if err != nil {
		return nil, fmt.Errorf("suite.setup: %w", err)
	}
	s.Setup = setup

	teardown, err := decodeActions(r.Teardown)
	if err != nil {
		return nil, fmt.Errorf("suite.teardown: %w", err)
	}
	s.Teardown = teardown

	if len(r.Databases) > 0 {
		s.Databases = map[string]bspec.DatabaseDef{}
		for name, rd := range r.Databases {
			def, err := rd.toDatabaseDef(name)
			if err != nil {
				return nil, err
			}
			s.Databases[name] = def
		}
	}

	return s, nil
}

func (rd rawDatabase) toDatabaseDef(name string) (bspec.DatabaseDef, error) {
	def := bspec.DatabaseDef{Name: name, URL: rd.URL}
	switch rd.Driver {
	case "", "sqlite":
		def.Driver = bspec.DriverSqlite
	case "postgres":
		def.Driver = bspec.DriverPostgres
	default:
		return def, fmt.Errorf("database %q: unknown driver %q", name, rd.Driver)
	}
	switch rd.Isolation {
	case "", "none":
		def.Isolation = bspec.IsolationNone
	case "per_file":
		def.Isolation = bspec.IsolationPerFile
	default:
		return def, fmt.Errorf("database %q: unknown isolation %q", name, rd.Isolation)
	}
	return def, nil
}

func (r rawFile) toFile() (*bspec.File, error) {
	f := &bspec.File{
		Binary:     r.Binary,
		Env:        r.Env,
		InheritEnv: r.InheritEnv,
		Serial:     r.Serial,
	}

	if r.CaptureFSDiff != nil {
		f.CaptureFSDiff = r.CaptureFSDiff
	}

	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
		f.Timeout = &d
	}

	if r.SandboxDir != "" {
		policy, err := parseSandboxPolicy(r.SandboxDir)
		if err != nil {
			return nil, fmt.Errorf("sandbox_dir: %w", err)
		}
		f.SandboxDir = &policy
	}

	setup, err := decodeActions(r.Setup)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	f.Setup = setup

	teardown, err := decodeActions(r.Teardown)
	if err != nil {
		return nil, fmt.Errorf("teardown: %w", err)
	}
	f.Teardown = teardown

	if len(r.Databases) > 0 {
		f.Databases = map[string]bspec.DatabaseDef{}
		for name, rd := range r.Databases {
			def, err := rd.toDatabaseDef(name)
			if err != nil {
				return nil, err
			}
			f.Databases[name] = def
		}
	}

	for _, rt := range r.Tests {
		t, err := rt.toTest()
		if err != nil {
			return nil, fmt.Errorf("test %q: %w", rt.Name, err)
		}
		f.Tests = append(f.Tests, t)
	}

	return f, nil
}

func (r rawTest) toTest() (*bspec.Test, error) {
	t := &bspec.Test{Name: r.Name, Serial: r.Serial}

	skipIf, err := decodeConditions(r.SkipIf)
	if err != nil {
		return nil, fmt.Errorf("skip_if: %w", err)
	}
	t.SkipIf = skipIf

	require, err := decodeConditions(r.Require)
	if err != nil {
		return nil, fmt.Errorf("require: %w", err)
	}
	t.Require = require

	setup, err := decodeActions(r.Setup)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	t.Setup = setup

	teardown, err := decodeActions(r.Teardown)
	if err != nil {
		return nil, fmt.Errorf("teardown: %w", err)
	}
	t.Teardown = teardown

	if len(r.Steps) > 0 {
		for i, rs := range r.Steps {
			step, err := rs.toStep()
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
			t.Steps = append(t.Steps, step)
		}
		return t, nil
	}

	// legacy single-implicit-step form
	if r.Run == nil {
		return nil, fmt.Errorf("test has neither steps nor run/expect")
	}
	run, err := r.Run.toRunSpec()
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	expect, err := decodeExpect(r.Expect)
	if err != nil {
		return nil, fmt.Errorf("expect: %w", err)
	}
	t.Steps = []*bspec.Step{{Name: r.Name, Run: run, Expect: expect}}
	return t, nil
}

func (r rawStep) toStep() (*bspec.Step, error) {
	s := &bspec.Step{Name: r.Name}

	setup, err := decodeActions(r.Setup)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	s.Setup = setup

	teardown, err := decodeActions(r.Teardown)
	if err != nil {
		return nil, fmt.Errorf("teardown: %w", err)
	}
	s.Teardown = teardown

	run, err := r.Run.toRunSpec()
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	s.Run = run

	expect, err := decodeExpect(r.Expect)
	if err != nil {
		return nil, fmt.Errorf("expect: %w", err)
	}
	s.Expect = expect

	return s, nil
}

func (r rawRunSpec) toRunSpec() (bspec.RunSpec, error) {
	rs := bspec.RunSpec{Cmd: r.Cmd, Args: r.Args, Env: r.Env}
	if r.Stdin != "" {
		rs.Stdin = []byte(r.Stdin)
	}
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return rs, fmt.Errorf("timeout: %w", err)
		}
		rs.Timeout = &d
	}
	return rs, nil
}

// ParseSandboxFlag parses the --sandbox-dir CLI flag's value the same way
// a file's sandbox_dir field is parsed.
func ParseSandboxFlag(v string) (bspec.SandboxPolicy, error) {
	return parseSandboxPolicy(v)
}

func parseSandboxPolicy(v string) (bspec.SandboxPolicy, error) {
	switch v {
	case "", "temp":
		return bspec.SandboxPolicy{Kind: bspec.SandboxTemp}, nil
	case "local":
		return bspec.SandboxPolicy{Kind: bspec.SandboxLocal}, nil
	default:
		return bspec.SandboxPolicy{Kind: bspec.SandboxPath, Path: v}, nil
	}
}
