// Package adapter is the query gateway: it opens a database file and runs
// queries against it, returning results as a core.Matrix.
//
// This package contains the contract that every engine implements plus the
// shared database/sql plumbing. Concrete engines live in pkg/adapters/ and
// register themselves from init().
package adapter

import (
	"context"

	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/leapstack-labs/dbmitra/pkg/dialect"
)

// Config holds the options for opening a database.
type Config struct {
	// Path is the database file. It must exist.
	Path string
	// ReadOnly opens the file without write access where the engine allows it.
	ReadOnly bool
	// Params holds engine-specific options, decoded by each engine
	// (e.g. DuckDB settings and extensions).
	Params map[string]any
}

// Adapter defines the interface that all database engines must implement.
type Adapter interface {
	// Open connects to the database file described by cfg.
	Open(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Query executes a SQL statement and returns its full result. Statements
	// that produce no columns return an empty matrix.
	Query(ctx context.Context, sql string) (core.Matrix, error)

	// ListTables runs the dialect's introspection query.
	ListTables(ctx context.Context) (core.Matrix, error)

	// Dialect returns the SQL dialect of this engine.
	Dialect() *dialect.Dialect

	// Path returns the absolute path of the open database, or "".
	Path() string
}
