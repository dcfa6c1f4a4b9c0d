// Package preview picks the table shown right after a database is opened.
package preview

import (
	"strings"

	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/leapstack-labs/dbmitra/pkg/dialect"
)

// DefaultLimit bounds the rows fetched by a preview query.
const DefaultLimit = 100

// nameColumn is the header looked up in a table list.
const nameColumn = "name"

// FirstTable returns the first table name listed in tables.
//
// The name is read from the column titled "name" (case-insensitive), or
// from column 0 when no such column exists. It returns false when the list
// has no data rows or the first name is not a usable identifier.
func FirstTable(tables core.Matrix) (string, bool) {
	if tables.RowCount() == 0 {
		return "", false
	}

	col := 0
	for i, h := range tables.Header() {
		if strings.EqualFold(h, nameColumn) {
			col = i
			break
		}
	}

	row := tables[1]
	if col >= len(row) {
		return "", false
	}
	name, ok := row[col].(string)
	if !ok || dialect.ValidateIdentifier(name) != nil {
		return "", false
	}
	return name, true
}

// SelectPreview builds the preview query for the first listed table.
//
// The result is a pure function of the order of tables. It returns false
// when there is nothing to preview; callers keep their previous state.
// A limit of zero or less means DefaultLimit.
func SelectPreview(tables core.Matrix, d *dialect.Dialect, limit int) (string, bool) {
	name, ok := FirstTable(tables)
	if !ok {
		return "", false
	}
	if d == nil {
		d = dialect.SQLite
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	query, err := d.SelectAllLimit(name, limit)
	if err != nil {
		return "", false
	}
	return query, true
}
