// Package condition evaluates the skip_if/require condition lists attached
// to a test: Env, Cmd, and Sql variants, via a fixed tagged-variant switch
// over internal/spec.Condition.
package condition

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/adamcooper1386/bintest/internal/dbpool"
	"github.com/adamcooper1386/bintest/internal/procrunner"
	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

// commandCheckTimeout bounds how long a Cmd condition is allowed to run
// before it's considered false rather than left to hang.
const commandCheckTimeout = 5 * time.Second

// Evaluator holds what Env/Cmd/Sql conditions need to resolve against: the
// effective environment for the enclosing test and the file's DB pool.
type Evaluator struct {
	Env map[string]string
	DB  *dbpool.Pool
}

// Evaluate reports whether c holds. A false result from Env/Cmd is never an
// error — a missing variable or a not-found command is simply "false". A
// Sql condition failing to even reach the database is a real error: it
// means the suite is broken, not that the condition is false.
func (e *Evaluator) Evaluate(ctx context.Context, c bspec.Condition) (bool, error) {
	switch c.Kind {
	case bspec.CondEnv:
		return e.evalEnv(c), nil
	case bspec.CondCmd:
		return e.evalCmd(ctx, c), nil
	case bspec.CondSql:
		return e.evalSql(ctx, c)
	default:
		return false, nil
	}
}

// Any reports whether any condition in cs is true (skip_if semantics).
func (e *Evaluator) Any(ctx context.Context, cs []bspec.Condition) (bool, error) {
	for _, c := range cs {
		ok, err := e.Evaluate(ctx, c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// All reports whether every condition in cs is true (require semantics).
func (e *Evaluator) All(ctx context.Context, cs []bspec.Condition) (bool, error) {
	for _, c := range cs {
		ok, err := e.Evaluate(ctx, c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) evalEnv(c bspec.Condition) bool {
	_, ok := e.Env[c.EnvName]
	return ok
}

func (e *Evaluator) evalCmd(ctx context.Context, c bspec.Condition) bool {
	runCtx, cancel := context.WithTimeout(ctx, commandCheckTimeout)
	defer cancel()

	outcome, err := procrunner.Run(runCtx, procrunner.Spec{
		Cmd:     c.Command,
		Args:    c.Args,
		Env:     envSlice(e.Env),
		Timeout: commandCheckTimeout,
	})
	if err != nil {
		return false
	}
	return outcome.Exit != nil && *outcome.Exit == 0
}

func (e *Evaluator) evalSql(ctx context.Context, c bspec.Condition) (bool, error) {
	var rows dbpool.Rows
	var queryErr error
	err := e.DB.With(c.Database, func(client dbpool.Client) error {
		rows, queryErr = client.Query(ctx, c.Query)
		return queryErr
	})
	if err != nil {
		return false, err
	}

	switch c.Predicate {
	case bspec.SqlPredicateEmpty:
		return len(rows) == 0, nil
	case bspec.SqlPredicateNonEmpty:
		return len(rows) > 0, nil
	default: // SqlPredicateTrue
		if len(rows) == 0 || len(rows[0]) == 0 {
			return false, nil
		}
		return isTruthy(rows[0][0]), nil
	}
}

func isTruthy(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "0", "false", "null":
		return false
	}
	if n, err := strconv.ParseFloat(cell, 64); err == nil {
		return n != 0
	}
	return true
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
