package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/dbmitra/internal/cli/config"
	"github.com/leapstack-labs/dbmitra/internal/cli/output"
	"github.com/leapstack-labs/dbmitra/internal/session"
	"github.com/spf13/cobra"

	// Engines register themselves with the gateway.
	_ "github.com/leapstack-labs/dbmitra/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/dbmitra/pkg/adapters/sqlite"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Session *session.Session
	Out     io.Writer
	Err     io.Writer

	// Styles color status lines on Out, ErrStyles on Err.
	Styles    *output.Styles
	ErrStyles *output.Styles
}

// NewCommandContext creates a CommandContext with a session but no open
// database. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func()) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	sess := session.New(logger, cfg.SessionOptions(logger))

	cleanup := func() {
		if err := sess.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}

	return newCommandContext(cfg, logger, sess, cmd.OutOrStdout(), cmd.ErrOrStderr()), cleanup
}

func newCommandContext(cfg *config.Config, logger *slog.Logger, sess *session.Session, out, errOut io.Writer) *CommandContext {
	return &CommandContext{
		Cfg:       cfg,
		Logger:    logger,
		Session:   sess,
		Out:       out,
		Err:       errOut,
		Styles:    output.NewStyles(out),
		ErrStyles: output.NewStyles(errOut),
	}
}

// OpenCommandContext creates a CommandContext and opens the database at
// path, running the automatic preview when preview is set.
func OpenCommandContext(cmd *cobra.Command, path string, preview bool) (*CommandContext, *session.OpenResult, func(), error) {
	cc, cleanup := NewCommandContext(cmd)

	open := cc.Session.Connect
	if preview {
		open = cc.Session.Open
	}
	res, err := open(cmd.Context(), path)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return cc, res, cleanup, nil
}

// Render shows the session's current snapshot using the configured view.
func (cc *CommandContext) Render(all bool) error {
	return cc.RenderSnapshot(cc.Session.Snapshot(), all)
}

// RenderSnapshot shows snap using the configured view.
func (cc *CommandContext) RenderSnapshot(snap *session.Snapshot, all bool) error {
	if snap == nil {
		_, _ = fmt.Fprintln(cc.Out, cc.Styles.Muted.Render("(no result)"))
		return nil
	}
	return renderSet(cc.Out, cc.Cfg, snap, all)
}

// Warnf prints a warning line to stderr.
func (cc *CommandContext) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintln(cc.Err, cc.ErrStyles.Warning.Render(fmt.Sprintf("Warning: "+format, args...)))
}

// Successf prints a status line to stdout.
func (cc *CommandContext) Successf(format string, args ...any) {
	_, _ = fmt.Fprintln(cc.Out, cc.Styles.Success.Render(fmt.Sprintf(format, args...)))
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded (e.g. a command run outside the root).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
