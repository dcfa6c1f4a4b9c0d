package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/dbmitra/pkg/adapter"
)

// Extensions are the file extensions opened with DuckDB.
var Extensions = []string{".duckdb", ".ddb"}

func init() {
	adapter.Register(adapter.Registration{
		Name:       "duckdb",
		Extensions: Extensions,
		Factory:    func(l *slog.Logger) adapter.Adapter { return New(l) },
	})
}
