// Package session holds the state of one interactive database session:
// the open connection and the cache of the most recent result set.
//
// A session has one writer (a query run completing) and any number of
// readers (views and exports). The cache is published through an atomic
// pointer so readers always see a complete snapshot and exports never
// observe a half-replaced result.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/dbmitra/pkg/adapter"
	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/leapstack-labs/dbmitra/pkg/export"
	"github.com/leapstack-labs/dbmitra/pkg/preview"
	"github.com/leapstack-labs/dbmitra/pkg/result"
)

// ErrSuperseded is returned by Run when a newer query was issued before
// this one completed. Its result is discarded.
var ErrSuperseded = errors.New("result superseded by a newer query")

// Snapshot is an immutable cached result. Never modify a published snapshot.
type Snapshot struct {
	// Generation is the run number that produced this snapshot.
	Generation uint64
	Query      string
	Result     *result.Set
	At         time.Time
}

// Matrix returns the cached matrix, or nil for a nil snapshot.
func (s *Snapshot) Matrix() core.Matrix {
	if s == nil || s.Result == nil {
		return nil
	}
	return s.Result.Matrix
}

// Options configures a Session.
type Options struct {
	// PreviewLimit is the LIMIT of the automatic preview; <= 0 uses the default.
	PreviewLimit int
	// Engine forces an engine instead of choosing by file extension.
	Engine string
	// ReadOnly opens databases without write access.
	ReadOnly bool
	// Params are passed to the engine on open.
	Params map[string]any
	// Export are the encoder defaults used by Export and ExportAll.
	Export export.Options
}

// OpenResult describes a successful Open.
type OpenResult struct {
	// Message is the status line shown to the user.
	Message string
	Engine  string
	Path    string
	Tables  core.Matrix
	// PreviewQuery is empty when the database has no usable table.
	PreviewQuery string
	// PreviewErr is set when the preview query failed. The connection
	// stays open.
	PreviewErr error
}

// Session owns one adapter and its result cache.
type Session struct {
	id     string
	logger *slog.Logger
	opts   Options

	mu  sync.Mutex // guards db
	db  adapter.Adapter
	pub sync.Mutex // serializes publication

	snap atomic.Pointer[Snapshot]
	gen  atomic.Uint64
}

// New creates a session with no open database.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger, opts Options) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = preview.DefaultLimit
	}
	id := uuid.NewString()
	return &Session{
		id:     id,
		logger: logger.With("session", id),
		opts:   opts,
	}
}

// ID returns the session identifier used in log lines.
func (s *Session) ID() string {
	return s.id
}

// Open connects to the database file at path, replacing any open one, and
// runs the automatic preview. The previous connection is kept when the new
// file cannot be opened.
func (s *Session) Open(ctx context.Context, path string) (*OpenResult, error) {
	res, err := s.Connect(ctx, path)
	if err != nil {
		return nil, err
	}
	db := s.adapter()

	tables, err := db.ListTables(ctx)
	if err != nil {
		res.PreviewErr = err
		s.logger.Warn("failed to list tables", "error", err)
		return res, nil
	}
	res.Tables = tables

	query, ok := preview.SelectPreview(tables, db.Dialect(), s.opts.PreviewLimit)
	if !ok {
		s.logger.Debug("no table to preview")
		return res, nil
	}
	res.PreviewQuery = query

	if _, err := s.Run(ctx, query); err != nil {
		res.PreviewErr = err
		s.logger.Warn("preview failed", "query", query, "error", err)
	}
	return res, nil
}

// Connect is Open without the preview. The cache is cleared.
func (s *Session) Connect(ctx context.Context, path string) (*OpenResult, error) {
	cfg := adapter.Config{Path: path, ReadOnly: s.opts.ReadOnly, Params: s.opts.Params}
	db, err := adapter.Open(ctx, cfg, s.opts.Engine, s.logger)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	prev := s.db
	s.db = db
	s.mu.Unlock()

	// Anything still running against the old database is stale.
	s.pub.Lock()
	s.gen.Add(1)
	s.snap.Store(nil)
	s.pub.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			s.logger.Warn("failed to close previous database", "path", prev.Path(), "error", err)
		}
	}

	engine := db.Dialect().Name
	s.logger.Info("database opened", "engine", engine, "path", db.Path())
	return &OpenResult{
		Message: fmt.Sprintf("Connected to %s database: %s", engine, db.Path()),
		Engine:  engine,
		Path:    db.Path(),
	}, nil
}

// Run executes query and publishes its result as the current snapshot.
// On failure the previous snapshot stays in place. If another Run (or
// Open) started after this one, the result or error is discarded and
// ErrSuperseded is returned along with the newer snapshot.
func (s *Session) Run(ctx context.Context, query string) (*Snapshot, error) {
	gen := s.gen.Add(1)

	db := s.adapter()
	if db == nil {
		return nil, &core.QueryError{Query: query, Err: core.ErrNotConnected}
	}

	start := time.Now()
	m, err := db.Query(ctx, query)
	if err != nil {
		s.logger.Debug("query failed", "generation", gen, "error", err)
		// The database may have been closed under a superseded run.
		if s.gen.Load() != gen {
			return s.snap.Load(), ErrSuperseded
		}
		return nil, err
	}

	snap := &Snapshot{
		Generation: gen,
		Query:      query,
		Result:     result.NewSet(m),
		At:         time.Now(),
	}

	s.pub.Lock()
	defer s.pub.Unlock()
	if s.gen.Load() != gen {
		s.logger.Debug("discarding superseded result", "generation", gen)
		return s.snap.Load(), ErrSuperseded
	}
	s.snap.Store(snap)

	s.logger.Debug("result cached",
		"generation", gen,
		"rows", snap.Result.RowCount(),
		"duration", time.Since(start),
	)
	return snap, nil
}

// Tables lists the tables of the open database.
func (s *Session) Tables(ctx context.Context) (core.Matrix, error) {
	db := s.adapter()
	if db == nil {
		return nil, &core.QueryError{Err: core.ErrNotConnected}
	}
	return db.ListTables(ctx)
}

// Preview re-runs the automatic preview query.
// It returns ok=false when there is no table to preview.
func (s *Session) Preview(ctx context.Context) (*Snapshot, bool, error) {
	db := s.adapter()
	if db == nil {
		return nil, false, &core.QueryError{Err: core.ErrNotConnected}
	}

	tables, err := db.ListTables(ctx)
	if err != nil {
		return nil, false, err
	}
	query, ok := preview.SelectPreview(tables, db.Dialect(), s.opts.PreviewLimit)
	if !ok {
		return nil, false, nil
	}
	snap, err := s.Run(ctx, query)
	return snap, true, err
}

// Snapshot returns the current cached result, or nil.
func (s *Session) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Connected reports whether a database is open.
func (s *Session) Connected() bool {
	return s.adapter() != nil
}

// Path returns the path of the open database, or "".
func (s *Session) Path() string {
	if db := s.adapter(); db != nil {
		return db.Path()
	}
	return ""
}

// Export writes the current snapshot to dest. The snapshot is captured
// once, so a Run completing meanwhile does not affect the file.
func (s *Session) Export(ctx context.Context, format export.Format, dest string) error {
	return export.Export(ctx, format, s.Snapshot().Matrix(), dest, s.exportOptions())
}

// ExportAll writes the current snapshot to every target.
func (s *Session) ExportAll(ctx context.Context, targets []export.Target) error {
	return export.ExportAll(ctx, s.Snapshot().Matrix(), targets, s.exportOptions())
}

// Close closes the open database. The cache is kept.
func (s *Session) Close() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

func (s *Session) adapter() adapter.Adapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

func (s *Session) exportOptions() export.Options {
	opts := s.opts.Export
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	return opts
}
