// Package sqlite provides the SQLite engine for the query gateway,
// backed by the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/dbmitra/pkg/adapter"
	"github.com/leapstack-labs/dbmitra/pkg/dialect"

	_ "modernc.org/sqlite" // sqlite driver
)

// magic is the fixed header of every SQLite 3 database file.
var magic = []byte("SQLite format 3\x00")

// ErrNotDatabase is returned when the file does not carry a SQLite header.
var ErrNotDatabase = errors.New("file is not a SQLite database")

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			Logger: logger,
			SQL:    dialect.SQLite,
		},
	}
}

// Open connects to an existing SQLite file. The file is never created.
func (a *Adapter) Open(ctx context.Context, cfg adapter.Config) error {
	if err := checkHeader(cfg.Path); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", DSN(cfg.Path, cfg.ReadOnly))
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	// Reading the schema forces sqlite to parse the file.
	var n int
	if err := db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to read sqlite schema: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.AbsPath = cfg.Path
	a.Logger.Debug("sqlite connected", "path", cfg.Path, "read_only", cfg.ReadOnly, "objects", n)
	return nil
}

// DSN builds a file: URI for path. mode=rw keeps sqlite from creating a
// missing file.
func DSN(path string, readOnly bool) string {
	mode := "rw"
	if readOnly {
		mode = "ro"
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: "mode=" + mode,
	}
	return u.String()
}

// checkHeader accepts empty files, which sqlite treats as a new database.
func checkHeader(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is resolved by the gateway
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, len(magic))
	n, err := io.ReadFull(f, buf)
	switch {
	case n == 0 && (err == io.EOF || err == nil):
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ErrNotDatabase
	case err != nil:
		return err
	}
	if !bytes.Equal(buf, magic) {
		return ErrNotDatabase
	}
	return nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
