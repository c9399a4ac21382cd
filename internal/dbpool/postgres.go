package dbpool

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	bterrors "github.com/adamcooper1386/bintest/internal/errors"
)

// postgresClient does not advertise snapshot/restore ("only
// drivers advertising the snapshot capability ... support" per_file
// isolation); internal/spec.Validate rejects isolation: per_file paired
// with driver: postgres before a run ever reaches this client.
type postgresClient struct {
	db     *sql.DB
	rawURL string
}

func openPostgres(rawURL, dsn string) (*postgresClient, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres %s: %w", bterrors.MaskURL(rawURL), bterrors.MaskErr(err, rawURL))
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", bterrors.MaskURL(rawURL), bterrors.MaskErr(err, rawURL))
	}
	return &postgresClient{db: db, rawURL: rawURL}, nil
}

func (c *postgresClient) Execute(ctx context.Context, statements []string, onErrorContinue bool) error {
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

func (c *postgresClient) Query(ctx context.Context, query string) (Rows, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &bterrors.SqlError{Query: query, Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	defer rows.Close()
	return scanRows(rows, query, c.rawURL)
}

func (c *postgresClient) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT count(*) FROM information_schema.tables WHERE table_name = $1`, table).Scan(&n)
	if err != nil {
		return false, &bterrors.SqlError{Query: "information_schema.tables lookup", Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	return n > 0, nil
}

func (c *postgresClient) RowCount(ctx context.Context, table string) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT count(*) FROM %s", table)
	if err := c.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, &bterrors.SqlError{Query: q, Database: bterrors.MaskURL(c.rawURL), Underlying: bterrors.MaskErr(err, c.rawURL)}
	}
	return n, nil
}

func (c *postgresClient) Snapshot(name string) error {
	return &bterrors.UnsupportedAction{Driver: "postgres", Action: "snapshot"}
}

func (c *postgresClient) Restore(name string) error {
	return &bterrors.UnsupportedAction{Driver: "postgres", Action: "restore"}
}

func (c *postgresClient) Close() error {
	return c.db.Close()
}
