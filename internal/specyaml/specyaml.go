// Package specyaml decodes the human-authored YAML specification
// documents: it unmarshals them with gopkg.in/yaml.v3 into loosely-typed
// maps, then lowers tagged-variant fields (conditions, actions, matchers,
// SQL assertions) with github.com/go-viper/mapstructure/v2 into
// internal/spec's strict value model.
//
// Process-level bintest.yaml discovery config (default output format, job
// count, color) is internal/config.LoadCLIConfig's concern, not this
// package's — see that package's doc comment.
package specyaml

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

// LoadFile parses one spec document into a *bspec.File. Path is recorded
// on the result for diagnostics and the result tree.
func LoadFile(path string) (*bspec.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	f, err := raw.toFile()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// LoadSuite parses one suite-level document (suite defaults, database
// definitions, suite setup/teardown) plus every file document named by
// filePaths, and validates the assembled tree.
func LoadSuite(suitePath string, filePaths []string) (*bspec.Suite, error) {
	var raw rawSuite
	if suitePath != "" {
		data, err := os.ReadFile(suitePath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", suitePath, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", suitePath, err)
		}
	}

	suite, err := raw.toSuite()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", suitePath, err)
	}

	for _, fp := range filePaths {
		f, err := LoadFile(fp)
		if err != nil {
			return nil, err
		}
		suite.Files = append(suite.Files, f)
	}

	if err := bspec.Validate(suite); err != nil {
		return nil, err
	}
	return suite, nil
}

// DiscoverFiles globs *.bintest.yaml / *.bintest.yml under dir, the
// layout convention assumed when no explicit file list is given on the
// command line.
func DiscoverFiles(dir string) ([]string, error) {
	var out []string
	for _, pattern := range []string{"*.bintest.yaml", "*.bintest.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}
