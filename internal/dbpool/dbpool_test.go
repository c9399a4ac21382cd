package dbpool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

func TestSqliteExecuteAndQuery(t *testing.T) {
	c, err := Open(bspec.DatabaseDef{Name: "db", Driver: bspec.DriverSqlite, URL: "sqlite://:memory:"})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Execute(ctx, []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (name) VALUES ('alice')",
		"INSERT INTO users (name) VALUES ('bob')",
	}, false))

	exists, err := c.TableExists(ctx, "users")
	require.NoError(t, err)
	assert.True(t, exists)

	n, err := c.RowCount(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := c.Query(ctx, "SELECT name FROM users ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, "alice\nbob", Stringify(rows))
}

func TestSqliteBareSchemeMemoryURL(t *testing.T) {
	c, err := Open(bspec.DatabaseDef{Name: "db", Driver: bspec.DriverSqlite, URL: "sqlite::memory:"})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Execute(ctx, []string{
		"CREATE TABLE t (x INTEGER)",
		"INSERT INTO t VALUES (1), (2), (3)",
	}, false))

	n, err := c.RowCount(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSqliteExecuteOnErrorContinue(t *testing.T) {
	c, err := Open(bspec.DatabaseDef{Name: "db", Driver: bspec.DriverSqlite, URL: "sqlite://:memory:"})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	err = c.Execute(ctx, []string{
		"CREATE TABLE t (id INTEGER)",
		"INSERT INTO missing_table VALUES (1)", // fails
		"INSERT INTO t VALUES (1)",
	}, true)
	require.NoError(t, err)

	n, err := c.RowCount(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSqliteExecuteOnErrorFailAborts(t *testing.T) {
	c, err := Open(bspec.DatabaseDef{Name: "db", Driver: bspec.DriverSqlite, URL: "sqlite://:memory:"})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	err = c.Execute(ctx, []string{
		"CREATE TABLE t (id INTEGER)",
		"INSERT INTO missing_table VALUES (1)",
		"INSERT INTO t VALUES (1)",
	}, false)
	require.Error(t, err)

	n, err := c.RowCount(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSqliteSnapshotRestore(t *testing.T) {
	c, err := Open(bspec.DatabaseDef{Name: "db", Driver: bspec.DriverSqlite, URL: "sqlite://:memory:"})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Execute(ctx, []string{
		"CREATE TABLE t (id INTEGER)",
		"INSERT INTO t VALUES (1)",
	}, false))
	require.NoError(t, c.Snapshot("post-setup"))

	require.NoError(t, c.Execute(ctx, []string{"INSERT INTO t VALUES (2)"}, false))
	n, err := c.RowCount(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, c.Restore("post-setup"))
	n, err = c.RowCount(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPoolLazyOpenAndSerialization(t *testing.T) {
	pool := NewPool(map[string]bspec.DatabaseDef{
		"main": {Name: "main", Driver: bspec.DriverSqlite, URL: "sqlite://:memory:"},
	})
	defer pool.Close()

	ctx := context.Background()
	err := pool.With("main", func(c Client) error {
		return c.Execute(ctx, []string{"CREATE TABLE t (id INTEGER)", "INSERT INTO t VALUES (1)"}, false)
	})
	require.NoError(t, err)

	var count int64
	err = pool.With("main", func(c Client) error {
		n, err := c.RowCount(ctx, "t")
		count = n
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPoolPerFileIsolation(t *testing.T) {
	pool := NewPool(map[string]bspec.DatabaseDef{
		"main": {Name: "main", Driver: bspec.DriverSqlite, URL: "sqlite://:memory:", Isolation: bspec.IsolationPerFile},
	})
	defer pool.Close()

	ctx := context.Background()
	require.NoError(t, pool.With("main", func(c Client) error {
		return c.Execute(ctx, []string{"CREATE TABLE t (id INTEGER)", "INSERT INTO t VALUES (1)"}, false)
	}))
	require.NoError(t, pool.SnapshotPostSetup())

	require.NoError(t, pool.With("main", func(c Client) error {
		return c.Execute(ctx, []string{"INSERT INTO t VALUES (2)"}, false)
	}))
	require.NoError(t, pool.RestorePostSetup())

	var count int64
	require.NoError(t, pool.With("main", func(c Client) error {
		n, err := c.RowCount(ctx, "t")
		count = n
		return err
	}))
	assert.Equal(t, int64(1), count)
}

func TestPoolUndefinedDatabase(t *testing.T) {
	pool := NewPool(map[string]bspec.DatabaseDef{})
	err := pool.With("nope", func(c Client) error { return nil })
	require.Error(t, err)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "5", Stringify(Rows{{"5"}}))
	assert.Equal(t, "a\nb", Stringify(Rows{{"a"}, {"b"}}))
	assert.Equal(t, "a\tb\nc\td", Stringify(Rows{{"a", "b"}, {"c", "d"}}))
	assert.Equal(t, "", Stringify(nil))
}
