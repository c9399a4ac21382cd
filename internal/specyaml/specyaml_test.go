package specyaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

const sampleFile = `
binary: /bin/echo
timeout: 2s
databases:
  app:
    driver: sqlite
    url: "sqlite://:memory:"
    isolation: per_file
tests:
  - name: greets
    skip_if:
      - env: SKIP_GREET
    setup:
      - write_file: {path: "in.txt", contents: "hi"}
    run:
      cmd: echo
      args: ["hello"]
    expect:
      exit: 0
      stdout: {contains: "hello"}
      files:
        - path: in.txt
          exists: true
      sql:
        - table_exists: {database: app, name: users}
        - row_count: {database: app, table: users, greater_than: 0}
  - name: multi_step
    steps:
      - name: step one
        run: {cmd: "true"}
        expect: {exit: 0}
      - name: step two
        run: {cmd: "false"}
        expect: {exit: 1}
`

func TestLoadFileParsesLegacyAndStepForms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bintest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0o644))

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, f.Tests, 2)

	greets := f.Tests[0]
	assert.Equal(t, "greets", greets.Name)
	require.Len(t, greets.SkipIf, 1)
	assert.Equal(t, bspec.CondEnv, greets.SkipIf[0].Kind)
	assert.Equal(t, "SKIP_GREET", greets.SkipIf[0].EnvName)

	require.Len(t, greets.Steps, 1)
	step := greets.Steps[0]
	assert.Equal(t, "echo", step.Run.Cmd)
	assert.Equal(t, []string{"hello"}, step.Run.Args)
	require.NotNil(t, step.Expect.Exit)
	assert.Equal(t, 0, *step.Expect.Exit)
	require.NotNil(t, step.Expect.Stdout)
	assert.Equal(t, bspec.MatchContains, step.Expect.Stdout.Kind)
	require.Len(t, step.Expect.Files, 1)
	assert.Equal(t, "in.txt", step.Expect.Files[0].Path)
	require.Len(t, step.Expect.Sql, 2)
	assert.Equal(t, bspec.SqlTableExists, step.Expect.Sql[0].Kind)
	assert.Equal(t, bspec.SqlRowCount, step.Expect.Sql[1].Kind)
	assert.Equal(t, bspec.RowCountGreaterThan, step.Expect.Sql[1].RowCountOp)

	multi := f.Tests[1]
	require.Len(t, multi.Steps, 2)
	assert.Equal(t, "step one", multi.Steps[0].Name)
	assert.Equal(t, "step two", multi.Steps[1].Name)

	require.Len(t, f.Databases, 1)
	db := f.Databases["app"]
	assert.Equal(t, bspec.DriverSqlite, db.Driver)
	assert.Equal(t, bspec.IsolationPerFile, db.Isolation)
}

func TestLoadSuiteValidatesAssembledTree(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "a.bintest.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte(`
tests:
  - name: ok
    run: {cmd: "true"}
    expect: {exit: 0}
`), 0o644))

	suite, err := LoadSuite("", []string{filePath})
	require.NoError(t, err)
	require.Len(t, suite.Files, 1)
	assert.Equal(t, filePath, suite.Files[0].Path)
}

func TestDecodeMatcherShorthandAndVariants(t *testing.T) {
	m, err := decodeMatcher("plain")
	require.NoError(t, err)
	assert.Equal(t, bspec.MatchEquals, m.Kind)

	m, err = decodeMatcher(map[string]interface{}{"regex": "^ok$"})
	require.NoError(t, err)
	assert.Equal(t, bspec.MatchRegex, m.Kind)

	_, err = decodeMatcher(map[string]interface{}{"bogus": "x"})
	assert.Error(t, err)
}
