package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/leapstack-labs/dbmitra/pkg/dialect"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Query, ListTables, Dialect and Path implementations.
type BaseSQLAdapter struct {
	DB      *sql.DB
	Cfg     Config
	SQL     *dialect.Dialect
	Logger  *slog.Logger
	AbsPath string
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection", "path", b.AbsPath)
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Query executes a SQL statement and collects every row.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (core.Matrix, error) {
	if b.DB == nil {
		return nil, &core.QueryError{Query: sqlStr, Err: core.ErrNotConnected}
	}

	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, &core.QueryError{Query: sqlStr, Err: err}
	}
	defer func() { _ = rows.Close() }()

	m, err := ScanMatrix(rows)
	if err != nil {
		return nil, &core.QueryError{Query: sqlStr, Err: err}
	}

	if b.Logger != nil {
		b.Logger.Debug("query executed", "rows", m.RowCount())
	}
	return m, nil
}

// ListTables runs the dialect's introspection query.
func (b *BaseSQLAdapter) ListTables(ctx context.Context) (core.Matrix, error) {
	return b.Query(ctx, b.Dialect().ListTablesQuery)
}

// Dialect returns the adapter's dialect, defaulting to SQLite.
func (b *BaseSQLAdapter) Dialect() *dialect.Dialect {
	if b.SQL == nil {
		return dialect.SQLite
	}
	return b.SQL
}

// Path returns the absolute path of the open database.
func (b *BaseSQLAdapter) Path() string {
	return b.AbsPath
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ScanMatrix reads all rows into a matrix whose first row is the column
// list. Cell values are canonicalised with core.Canonical. A result with
// no columns yields an empty matrix.
func ScanMatrix(rows *sql.Rows) (core.Matrix, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return core.Matrix{}, rows.Err()
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	m := core.Matrix{header}

	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(m), err)
		}

		for i, v := range values {
			values[i] = core.Canonical(v)
		}
		m = append(m, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
