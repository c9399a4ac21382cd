package dbpool

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	bterrors "github.com/adamcooper1386/bintest/internal/errors"
)

// sqliteClient is the only driver advertising the snapshot/restore
// capability: it is in-process, so a snapshot is a real copy of
// the database file taken with VACUUM INTO, and restore rebuilds every
// table from that copy via ATTACH + CREATE TABLE ... AS SELECT.
type sqliteClient struct {
	db        *sql.DB
	rawURL    string
	snapDir   string
	snapshots map[string]string // name -> file path under snapDir
}

func openSqlite(rawURL, dsn string) (*sqliteClient, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", bterrors.MaskURL(rawURL), bterrors.MaskErr(err, rawURL))
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", bterrors.MaskURL(rawURL), bterrors.MaskErr(err, rawURL))
	}
	// A single connection: sqlite serializes writes anyway, and ":memory:"
	// DSNs are per-connection, so a pool would silently fragment the
	// database across goroutines that grab different connections.
	db.SetMaxOpenConns(1)
	snapDir, err := os.MkdirTemp("", "bintest-sqlite-snap-")
	if err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteClient{
		db:        db,
		rawURL:    rawURL,
		snapDir:   snapDir,
		snapshots: make(map[string]string),
	}, nil
}

func (c *sqliteClient) Execute(ctx context.Context, statements []string, onErrorContinue bool) error {
	for _, stmt := range statements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			if onErrorContinue {
				continue
			}
			return &bterrors.SqlError{Query: stmt, Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
		}
	}
	return nil
}

func (c *sqliteClient) Query(ctx context.Context, query string) (Rows, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &bterrors.SqlError{Query: query, Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	defer rows.Close()
	return scanRows(rows, query, c.rawURL)
}

func (c *sqliteClient) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, &bterrors.SqlError{Query: "sqlite_master lookup", Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	return n > 0, nil
}

func (c *sqliteClient) RowCount(ctx context.Context, table string) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT count(*) FROM %s", table)
	if err := c.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, &bterrors.SqlError{Query: q, Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	return n, nil
}

func (c *sqliteClient) Snapshot(name string) error {
	path := filepath.Join(c.snapDir, sanitizeSnapshotName(name)+".db")
	os.Remove(path)
	if _, err := c.db.Exec(fmt.Sprintf("VACUUM INTO '%s'", path)); err != nil {
		return &bterrors.SqlError{Query: "VACUUM INTO", Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	c.snapshots[name] = path
	return nil
}

func (c *sqliteClient) Restore(name string) error {
	path, ok := c.snapshots[name]
	if !ok {
		return fmt.Errorf("no snapshot named %q", name)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return &bterrors.SqlError{Query: "BEGIN", Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	attached := false
	// Runs after the deferred Rollback below has ended the transaction, so
	// the alias is free for the next Restore on this single connection.
	defer func() {
		if attached {
			c.db.Exec("DETACH DATABASE bintest_restore")
		}
	}()
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("ATTACH DATABASE '%s' AS bintest_restore", path)); err != nil {
		return &bterrors.SqlError{Query: "ATTACH DATABASE", Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	attached = true

	rows, err := tx.Query(`SELECT name FROM bintest_restore.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return &bterrors.SqlError{Query: "sqlite_master lookup", Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	rows.Close()

	for _, table := range tables {
		if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS main.%s", table)); err != nil {
			return &bterrors.SqlError{Query: "DROP TABLE", Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
		}
		stmt := fmt.Sprintf("CREATE TABLE main.%s AS SELECT * FROM bintest_restore.%s", table, table)
		if _, err := tx.Exec(stmt); err != nil {
			return &bterrors.SqlError{Query: stmt, Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
		}
	}

	return tx.Commit()
}

func (c *sqliteClient) Close() error {
	os.RemoveAll(c.snapDir)
	return c.db.Close()
}

func sanitizeSnapshotName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
