// Package assertion implements the assertion engine: it takes
// an ExpectSpec, a process outcome, a sandbox, and a DB pool, and yields an
// ordered, non-short-circuiting list of Results — every listed assertion
// runs regardless of earlier failures, and the step's verdict is their
// conjunction.
package assertion

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/adamcooper1386/bintest/internal/dbpool"
	"github.com/adamcooper1386/bintest/internal/procrunner"
	"github.com/adamcooper1386/bintest/internal/sandbox"
	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

// Result is one evaluated assertion (AssertionResult).
type Result struct {
	Kind     string
	Passed   bool
	Expected string
	Actual   string
	Context  string
	Err      error // non-nil marks this an infrastructure failure, not a mismatch
}

// Evaluate runs every assertion named in expect, in a fixed order:
// exit, signal, stdout, stderr, each files entry in order, tree, each sql
// entry in order.
func Evaluate(ctx context.Context, expect bspec.ExpectSpec, outcome procrunner.Outcome, sb *sandbox.Sandbox, pool *dbpool.Pool) []Result {
	var results []Result

	if expect.Exit != nil {
		results = append(results, evalExit(*expect.Exit, outcome))
	}
	if expect.Signal != nil {
		results = append(results, evalSignal(*expect.Signal, outcome))
	}
	if expect.Stdout != nil {
		results = append(results, evalMatcher("stdout", expect.Stdout, string(outcome.Stdout)))
	}
	if expect.Stderr != nil {
		results = append(results, evalMatcher("stderr", expect.Stderr, string(outcome.Stderr)))
	}
	for _, fa := range expect.Files {
		results = append(results, evalFile(sb, fa))
	}
	if expect.Tree != nil {
		results = append(results, evalTree(sb, *expect.Tree)...)
	}
	for _, sa := range expect.Sql {
		results = append(results, evalSql(ctx, pool, sa))
	}

	return results
}

// Passed reports whether every result holds and none errored.
func Passed(results []Result) bool {
	for _, r := range results {
		if r.Err != nil || !r.Passed {
			return false
		}
	}
	return true
}

func evalExit(want int, outcome procrunner.Outcome) Result {
	got := "signal"
	passed := false
	if outcome.Exit != nil {
		got = strconv.Itoa(*outcome.Exit)
		passed = *outcome.Exit == want
	}
	return Result{Kind: "exit", Passed: passed, Expected: strconv.Itoa(want), Actual: got}
}

func evalSignal(want int, outcome procrunner.Outcome) Result {
	got := "none"
	passed := false
	if outcome.Signal != nil {
		got = strconv.Itoa(*outcome.Signal)
		passed = *outcome.Signal == want
	}
	return Result{Kind: "signal", Passed: passed, Expected: strconv.Itoa(want), Actual: got}
}

func evalMatcher(kind string, m *bspec.Matcher, actual string) Result {
	passed, err := Match(m, actual)
	return Result{Kind: kind, Passed: passed, Expected: matcherLabel(m), Actual: actual, Err: err}
}

// Match applies m to actual per three matcher kinds. A nil
// matcher is unchecked and always passes.
func Match(m *bspec.Matcher, actual string) (bool, error) {
	if m == nil {
		return true, nil
	}
	switch m.Kind {
	case bspec.MatchEquals:
		return actual == m.Value, nil
	case bspec.MatchContains:
		return strings.Contains(actual, m.Value), nil
	case bspec.MatchRegex:
		re, err := regexp.Compile(m.Value)
		if err != nil {
			return false, err
		}
		return re.MatchString(actual), nil
	default:
		return false, fmt.Errorf("unknown matcher kind %v", m.Kind)
	}
}

func matcherLabel(m *bspec.Matcher) string {
	if m == nil {
		return ""
	}
	switch m.Kind {
	case bspec.MatchEquals:
		return "equals " + strconv.Quote(m.Value)
	case bspec.MatchContains:
		return "contains " + strconv.Quote(m.Value)
	case bspec.MatchRegex:
		return "matches /" + m.Value + "/"
	default:
		return ""
	}
}

func evalFile(sb *sandbox.Sandbox, fa bspec.FileAssertion) Result {
	abs, err := sb.Resolve(fa.Path)
	if err != nil {
		return Result{Kind: "files", Context: fa.Path, Err: err}
	}
	info, statErr := os.Stat(abs)
	exists := statErr == nil

	if exists != fa.Exists {
		return Result{
			Kind: "files", Context: fa.Path,
			Expected: strconv.FormatBool(fa.Exists), Actual: strconv.FormatBool(exists),
		}
	}
	if !exists || fa.Contents == nil {
		return Result{Kind: "files", Context: fa.Path, Passed: true}
	}
	if info.IsDir() {
		return Result{Kind: "files", Context: fa.Path, Err: fmt.Errorf("%s is a directory, not a file", fa.Path)}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return Result{Kind: "files", Context: fa.Path, Err: err}
	}
	passed, err := Match(fa.Contents, string(data))
	return Result{Kind: "files", Context: fa.Path, Passed: passed, Expected: matcherLabel(fa.Contents), Actual: string(data), Err: err}
}

func evalTree(sb *sandbox.Sandbox, tree bspec.TreeAssertion) []Result {
	var results []Result

	for _, entry := range tree.Contains {
		rel := joinTreePath(tree.Root, entry.Path)
		results = append(results, evalFile(sb, bspec.FileAssertion{Path: rel, Exists: true, Contents: entry.Contents}))
	}
	for _, excluded := range tree.Excludes {
		rel := joinTreePath(tree.Root, excluded)
		abs, err := sb.Resolve(rel)
		if err != nil {
			results = append(results, Result{Kind: "tree", Context: rel, Err: err})
			continue
		}
		_, statErr := os.Stat(abs)
		exists := statErr == nil
		results = append(results, Result{
			Kind: "tree", Context: rel, Passed: !exists,
			Expected: "absent", Actual: map[bool]string{true: "present", false: "absent"}[exists],
		})
	}

	return results
}

func joinTreePath(root, rel string) string {
	if root == "" {
		return rel
	}
	return strings.TrimSuffix(root, "/") + "/" + rel
}

func evalSql(ctx context.Context, pool *dbpool.Pool, sa bspec.SqlAssertion) Result {
	switch sa.Kind {
	case bspec.SqlQuery:
		return evalSqlQuery(ctx, pool, sa)
	case bspec.SqlTableExists:
		return evalSqlTableExists(ctx, pool, sa, true)
	case bspec.SqlTableNotExists:
		return evalSqlTableExists(ctx, pool, sa, false)
	case bspec.SqlRowCount:
		return evalSqlRowCount(ctx, pool, sa)
	default:
		return Result{Kind: "sql", Err: fmt.Errorf("unknown sql assertion kind %v", sa.Kind)}
	}
}

func evalSqlQuery(ctx context.Context, pool *dbpool.Pool, sa bspec.SqlAssertion) Result {
	var rows dbpool.Rows
	err := pool.With(sa.Database, func(c dbpool.Client) error {
		r, qErr := c.Query(ctx, sa.Query)
		rows = r
		return qErr
	})
	if err != nil {
		return Result{Kind: "sql", Context: sa.Query, Err: err}
	}

	actual := dbpool.Stringify(rows)
	switch {
	case sa.ReturnsEmpty:
		return Result{Kind: "sql", Context: sa.Query, Passed: len(rows) == 0, Expected: "empty", Actual: actual}
	case sa.ReturnsOneRow:
		return Result{Kind: "sql", Context: sa.Query, Passed: len(rows) == 1, Expected: "one row", Actual: actual}
	case sa.ReturnsNull:
		passed := len(rows) == 1 && len(rows[0]) == 1 && rows[0][0] == "NULL"
		return Result{Kind: "sql", Context: sa.Query, Passed: passed, Expected: "NULL", Actual: actual}
	case sa.Returns != nil:
		passed, mErr := Match(sa.Returns, actual)
		return Result{Kind: "sql", Context: sa.Query, Passed: passed, Expected: matcherLabel(sa.Returns), Actual: actual, Err: mErr}
	default:
		return Result{Kind: "sql", Context: sa.Query, Passed: true, Actual: actual}
	}
}

func evalSqlTableExists(ctx context.Context, pool *dbpool.Pool, sa bspec.SqlAssertion, want bool) Result {
	var exists bool
	err := pool.With(sa.Database, func(c dbpool.Client) error {
		e, qErr := c.TableExists(ctx, sa.Table)
		exists = e
		return qErr
	})
	if err != nil {
		return Result{Kind: "sql", Context: sa.Table, Err: err}
	}
	return Result{
		Kind: "sql", Context: sa.Table, Passed: exists == want,
		Expected: strconv.FormatBool(want), Actual: strconv.FormatBool(exists),
	}
}

func evalSqlRowCount(ctx context.Context, pool *dbpool.Pool, sa bspec.SqlAssertion) Result {
	var n int64
	err := pool.With(sa.Database, func(c dbpool.Client) error {
		count, qErr := c.RowCount(ctx, sa.RowCountTable)
		n = count
		return qErr
	})
	if err != nil {
		return Result{Kind: "sql", Context: sa.RowCountTable, Err: err}
	}

	var passed bool
	switch sa.RowCountOp {
	case bspec.RowCountEquals:
		passed = n == sa.RowCountValue
	case bspec.RowCountGreaterThan:
		passed = n > sa.RowCountValue
	case bspec.RowCountLessThan:
		passed = n < sa.RowCountValue
	}
	return Result{
		Kind: "sql", Context: sa.RowCountTable, Passed: passed,
		Expected: strconv.FormatInt(sa.RowCountValue, 10), Actual: strconv.FormatInt(n, 10),
	}
}
