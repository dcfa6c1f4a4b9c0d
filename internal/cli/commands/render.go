package commands

import (
	"io"

	"github.com/leapstack-labs/dbmitra/internal/cli/config"
	"github.com/leapstack-labs/dbmitra/internal/cli/view"
	"github.com/leapstack-labs/dbmitra/internal/session"
	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/leapstack-labs/dbmitra/pkg/result"
)

func renderSet(w io.Writer, cfg *config.Config, snap *session.Snapshot, all bool) error {
	return view.Render(w, cfg.ViewMode(), snap.Result, cfg.ViewOptions(all))
}

// renderMatrix shows a raw matrix (e.g. the table list) as a grid.
func renderMatrix(w io.Writer, cfg *config.Config, m core.Matrix) error {
	return view.RenderGrid(w, result.NewSet(m), cfg.ViewOptions(false))
}
