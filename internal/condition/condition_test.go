package condition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamcooper1386/bintest/internal/dbpool"
	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

func TestEvalEnv(t *testing.T) {
	e := &Evaluator{Env: map[string]string{"FOO": "1"}}
	ok, err := e.Evaluate(context.Background(), bspec.Condition{Kind: bspec.CondEnv, EnvName: "FOO"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(context.Background(), bspec.Condition{Kind: bspec.CondEnv, EnvName: "MISSING"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalCmd(t *testing.T) {
	e := &Evaluator{Env: map[string]string{"PATH": "/usr/bin:/bin"}}
	ok, err := e.Evaluate(context.Background(), bspec.Condition{Kind: bspec.CondCmd, Command: "true"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(context.Background(), bspec.Condition{Kind: bspec.CondCmd, Command: "false"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.Evaluate(context.Background(), bspec.Condition{Kind: bspec.CondCmd, Command: "definitely-not-a-real-binary-xyz"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalSql(t *testing.T) {
	pool := dbpool.NewPool(map[string]bspec.DatabaseDef{
		"main": {Name: "main", Driver: bspec.DriverSqlite, URL: "sqlite://:memory:"},
	})
	defer pool.Close()

	ctx := context.Background()
	require.NoError(t, pool.With("main", func(c dbpool.Client) error {
		return c.Execute(ctx, []string{"CREATE TABLE t (id INTEGER)", "INSERT INTO t VALUES (1)"}, false)
	}))

	e := &Evaluator{DB: pool}

	ok, err := e.Evaluate(ctx, bspec.Condition{Kind: bspec.CondSql, Database: "main", Query: "SELECT count(*) FROM t", Predicate: bspec.SqlPredicateTrue})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(ctx, bspec.Condition{Kind: bspec.CondSql, Database: "main", Query: "SELECT * FROM t WHERE id = 999", Predicate: bspec.SqlPredicateEmpty})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(ctx, bspec.Condition{Kind: bspec.CondSql, Database: "main", Query: "SELECT * FROM t", Predicate: bspec.SqlPredicateNonEmpty})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAnyAll(t *testing.T) {
	e := &Evaluator{Env: map[string]string{"FOO": "1"}}
	ctx := context.Background()

	any, err := e.Any(ctx, []bspec.Condition{
		{Kind: bspec.CondEnv, EnvName: "MISSING"},
		{Kind: bspec.CondEnv, EnvName: "FOO"},
	})
	require.NoError(t, err)
	assert.True(t, any)

	all, err := e.All(ctx, []bspec.Condition{
		{Kind: bspec.CondEnv, EnvName: "FOO"},
		{Kind: bspec.CondEnv, EnvName: "MISSING"},
	})
	require.NoError(t, err)
	assert.False(t, all)
}
