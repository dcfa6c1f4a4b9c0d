package session

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/dbmitra/pkg/adapter"
	"github.com/leapstack-labs/dbmitra/pkg/core"
)

// gatedAdapter blocks the query "slow" until release is closed.
type gatedAdapter struct {
	adapter.BaseSQLAdapter
	started chan struct{}
	release chan struct{}
}

var gated = &gatedAdapter{}

func (g *gatedAdapter) reset() {
	g.started = make(chan struct{})
	g.release = make(chan struct{})
}

func (g *gatedAdapter) Open(_ context.Context, cfg adapter.Config) error {
	g.AbsPath = cfg.Path
	return nil
}

func (g *gatedAdapter) Close() error { return nil }

func (g *gatedAdapter) ListTables(_ context.Context) (core.Matrix, error) {
	return core.Matrix{{"name"}}, nil
}

func (g *gatedAdapter) Query(ctx context.Context, sql string) (core.Matrix, error) {
	if sql == "slow" {
		close(g.started)
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return core.NewMatrix([]string{"query"}, []any{sql}), nil
}

func init() {
	adapter.Register(adapter.Registration{
		Name:       "gated",
		Extensions: []string{".gated"},
		Factory:    func(_ *slog.Logger) adapter.Adapter { return gated },
	})
}
