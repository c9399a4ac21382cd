package dbpool

import (
	"database/sql"
	"fmt"

	bterrors "github.com/adamcooper1386/bintest/internal/errors"
)

// scanRows drains a *sql.Rows into the Rows matrix, stringifying every cell
// per NULL becomes the literal "NULL", byte slices (text/blob
// columns on both drivers) become their raw string form, everything else
// goes through fmt.Sprintf.
func scanRows(rows *sql.Rows, query, rawURL string) (Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, &bterrors.SqlError{Query: query, Database: bterrors.MaskURL(rawURL), Underlying: bterrors.MaskErr(err, rawURL)}
	}

	var out Rows
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &bterrors.SqlError{Query: query, Database: bterrors.MaskURL(rawURL), Underlying: bterrors.MaskErr(err, rawURL)}
		}
		row := make([]string, len(cols))
		for i, v := range raw {
			row[i] = stringifyCell(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &bterrors.SqlError{Query: query, Database: bterrors.MaskURL(rawURL), Underlying: bterrors.MaskErr(err, rawURL)}
	}
	return out, nil
}

func stringifyCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
