package dbpool

import (
	"fmt"
	"strings"

	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

// Open opens a Client for the given logical database definition,
// dispatching to the sqlite or postgres implementation by driver.
func Open(def bspec.DatabaseDef) (Client, error) {
	switch def.Driver {
	case bspec.DriverSqlite:
		dsn := sqliteDSN(def.URL)
		if dsn == "" {
			dsn = ":memory:"
		}
		return openSqlite(def.URL, dsn)
	case bspec.DriverPostgres:
		return openPostgres(def.URL, def.URL)
	default:
		return nil, fmt.Errorf("unknown database driver for %q", def.Name)
	}
}

// sqliteDSN strips a sqlite URL's scheme, accepting both the
// "sqlite://" form ("sqlite:///absolute/path.db" -> "/absolute/path.db",
// "sqlite://:memory:" -> ":memory:") and the bare "sqlite:" form
// ("sqlite::memory:" -> ":memory:").
func sqliteDSN(url string) string {
	if rest, ok := strings.CutPrefix(url, "sqlite://"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(url, "sqlite:"); ok {
		return rest
	}
	return url
}
