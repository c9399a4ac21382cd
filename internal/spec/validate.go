package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	bterrors "github.com/adamcooper1386/bintest/internal/errors"
)

// Validate checks the invariants that can be verified without executing
// anything: unique test/step names, a resolvable binary,
// a positive default timeout, valid regexes, and isolation policies matched
// to drivers that actually support snapshot/restore. It canonicalizes any
// suite- or file-level binary path to an absolute path as a side effect,
// satisfying the invariant "binary ... is canonicalized to an absolute path
// before any test runs".
func Validate(suite *Suite) error {
	if suite.Timeout <= 0 {
		return &bterrors.SpecError{Field: "suite.timeout", Problem: "timeout must be positive"}
	}
	if suite.Binary != "" {
		abs, err := canonicalizeBinary(suite.Binary)
		if err != nil {
			return &bterrors.SpecError{Field: "suite.binary", Problem: err.Error()}
		}
		suite.Binary = abs
	}
	for name, db := range suite.Databases {
		if err := validateDatabaseDef(name, db); err != nil {
			return err
		}
	}

	for fi, file := range suite.Files {
		if err := validateFile(fi, file); err != nil {
			return err
		}
	}
	return nil
}

func validateFile(index int, file *File) error {
	field := fmt.Sprintf("suite.files[%d]", index)
	if file.Path != "" {
		field = file.Path
	}

	if file.Timeout != nil && *file.Timeout <= 0 {
		return &bterrors.SpecError{Path: file.Path, Field: field + ".timeout", Problem: "timeout must be positive"}
	}
	if file.Binary != "" {
		abs, err := canonicalizeBinary(file.Binary)
		if err != nil {
			return &bterrors.SpecError{Path: file.Path, Field: field + ".binary", Problem: err.Error()}
		}
		file.Binary = abs
	}
	for name, db := range file.Databases {
		if err := validateDatabaseDef(name, db); err != nil {
			return err
		}
	}

	seenTests := make(map[string]bool, len(file.Tests))
	for ti, test := range file.Tests {
		if test.Name == "" {
			return &bterrors.SpecError{Path: file.Path, Field: fmt.Sprintf("%s.tests[%d]", field, ti), Problem: "test name is required"}
		}
		if seenTests[test.Name] {
			return &bterrors.SpecError{Path: file.Path, Field: field + ".tests", Problem: fmt.Sprintf("duplicate test name %q", test.Name)}
		}
		seenTests[test.Name] = true

		if len(test.Steps) == 0 {
			return &bterrors.SpecError{Path: file.Path, Field: fmt.Sprintf("%s.tests[%q]", field, test.Name), Problem: "test must have at least one step"}
		}

		seenSteps := make(map[string]bool, len(test.Steps))
		for si, step := range test.Steps {
			if step.Name != "" {
				if seenSteps[step.Name] {
					return &bterrors.SpecError{Path: file.Path, Field: fmt.Sprintf("%s.tests[%q].steps", field, test.Name), Problem: fmt.Sprintf("duplicate step name %q", step.Name)}
				}
				seenSteps[step.Name] = true
			}
			if step.Run.Timeout != nil && *step.Run.Timeout <= 0 {
				return &bterrors.SpecError{Path: file.Path, Field: fmt.Sprintf("%s.tests[%q].steps[%d].timeout", field, test.Name, si), Problem: "timeout must be positive"}
			}
			if err := validateMatcher(step.Expect.Stdout); err != nil {
				return wrapFieldErr(file.Path, fmt.Sprintf("%s.tests[%q].steps[%d].expect.stdout", field, test.Name, si), err)
			}
			if err := validateMatcher(step.Expect.Stderr); err != nil {
				return wrapFieldErr(file.Path, fmt.Sprintf("%s.tests[%q].steps[%d].expect.stderr", field, test.Name, si), err)
			}
			for _, fa := range step.Expect.Files {
				if err := validateMatcher(fa.Contents); err != nil {
					return wrapFieldErr(file.Path, fmt.Sprintf("%s.tests[%q].steps[%d].expect.files", field, test.Name, si), err)
				}
			}
			if step.Expect.Tree != nil {
				for _, te := range step.Expect.Tree.Contains {
					if err := validateMatcher(te.Contents); err != nil {
						return wrapFieldErr(file.Path, fmt.Sprintf("%s.tests[%q].steps[%d].expect.tree", field, test.Name, si), err)
					}
				}
			}
			for _, sa := range step.Expect.Sql {
				if sa.Kind == SqlQuery {
					if err := validateMatcher(sa.Returns); err != nil {
						return wrapFieldErr(file.Path, fmt.Sprintf("%s.tests[%q].steps[%d].expect.sql", field, test.Name, si), err)
					}
				}
			}
		}
	}
	return nil
}

func wrapFieldErr(path, field string, err error) error {
	return &bterrors.SpecError{Path: path, Field: field, Problem: err.Error()}
}

func validateMatcher(m *Matcher) error {
	if m == nil || m.Kind != MatchRegex {
		return nil
	}
	if _, err := regexp.Compile(m.Value); err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	return nil
}

func validateDatabaseDef(name string, db DatabaseDef) error {
	if db.Isolation == IsolationPerFile && db.Driver != DriverSqlite {
		return &bterrors.SpecError{Field: fmt.Sprintf("databases[%q].isolation", name), Problem: "isolation: per_file is only supported by drivers advertising the snapshot capability (sqlite)"}
	}
	return nil
}

func canonicalizeBinary(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving binary path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("binary %q does not exist: %w", abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("binary %q is a directory", abs)
	}
	return abs, nil
}
