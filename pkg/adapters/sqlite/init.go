package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/dbmitra/pkg/adapter"
)

// Extensions are the file extensions opened with SQLite.
var Extensions = []string{".db", ".sqlite", ".sqlite3"}

func init() {
	adapter.Register(adapter.Registration{
		Name:       "sqlite",
		Extensions: Extensions,
		Factory:    func(l *slog.Logger) adapter.Adapter { return New(l) },
	})
}
