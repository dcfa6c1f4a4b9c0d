package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/dbmitra/internal/cli/view"
	"github.com/leapstack-labs/dbmitra/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	promptMain = "dbmitra> "
	promptCont = "    ...> "
)

// NewShellCommand creates the interactive shell command.
func NewShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell <file>",
		Short: "Explore a database file interactively",
		Long: `Open a database file in an interactive shell.

SQL statements end with a semicolon and may span several lines. The last
result is kept and can be re-displayed with another view or exported.
Tab completion offers table names and is refreshed when the database file
changes on disk.`,
		Example: `  dbmitra shell ./app.db`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, args[0])
		},
	}
	return cmd
}

func runShell(cmd *cobra.Command, path string) error {
	cc, res, cleanup, err := OpenCommandContext(cmd, path, true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sh := newShell(cc)
	sh.printOpen(res)
	sh.completer.refresh(ctx, cc.Session)

	eg, egctx := errgroup.WithContext(ctx)
	watcher, err := newDBWatcher(cc.Logger, func() {
		sh.completer.refresh(egctx, cc.Session)
	})
	if err != nil {
		cc.Logger.Warn("file watching disabled", "error", err)
	} else {
		sh.watcher = watcher
		if err := watcher.Watch(cc.Session.Path()); err != nil {
			cc.Logger.Warn("failed to watch database", "error", err)
		}
		eg.Go(func() error {
			return watcher.Run(egctx)
		})
	}

	// Configure readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptMain,
		HistoryFile:     cc.Cfg.HistoryPath(),
		AutoComplete:    sh.completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cc.Out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cc.Out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sh.reset()
			rl.SetPrompt(promptMain)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if quit := sh.handleLine(ctx, line); quit {
			break
		}
		rl.SetPrompt(sh.prompt)
	}

	cancel()
	if sh.watcher != nil {
		_ = eg.Wait()
	}
	return nil
}

// shell holds the REPL state between lines.
type shell struct {
	cc        *CommandContext
	mode      view.Mode
	all       bool
	buf       strings.Builder
	prompt    string
	completer *tableCompleter
	watcher   *dbWatcher
}

func newShell(cc *CommandContext) *shell {
	return &shell{
		cc:        cc,
		mode:      cc.Cfg.ViewMode(),
		prompt:    promptMain,
		completer: newTableCompleter(),
	}
}

func (sh *shell) reset() {
	sh.buf.Reset()
	sh.prompt = promptMain
}

// handleLine processes one input line and reports whether to quit.
func (sh *shell) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	// Handle dot-commands
	if sh.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return sh.dotCommand(ctx, line)
	}

	// Accumulate multi-line SQL until semicolon
	sh.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		sh.buf.WriteString(" ")
		sh.prompt = promptCont
		return false
	}

	query := strings.TrimSpace(strings.TrimSuffix(sh.buf.String(), ";"))
	sh.reset()
	if query == "" {
		return false
	}

	snap, err := sh.cc.Session.Run(ctx, query)
	if err != nil {
		sh.errorf("%v", err)
		return false
	}
	if err := view.Render(sh.cc.Out, sh.mode, snap.Result, sh.cc.Cfg.ViewOptions(sh.all)); err != nil {
		sh.errorf("%v", err)
	}
	_, _ = fmt.Fprintln(sh.cc.Out)
	return false
}

func (sh *shell) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(sh.cc.Out)

	case ".tables":
		tables, err := sh.cc.Session.Tables(ctx)
		if err != nil {
			sh.errorf("%v", err)
			return false
		}
		if err := renderMatrix(sh.cc.Out, sh.cc.Cfg, tables); err != nil {
			sh.errorf("%v", err)
		}

	case ".preview":
		snap, ok, err := sh.cc.Session.Preview(ctx)
		if err != nil {
			sh.errorf("%v", err)
			return false
		}
		if !ok {
			_, _ = fmt.Fprintln(sh.cc.Out, "No tables found.")
			return false
		}
		_, _ = fmt.Fprintln(sh.cc.Out, snap.Query)
		if err := sh.render(true); err != nil {
			sh.errorf("%v", err)
		}

	case ".view":
		if len(args) == 0 {
			_, _ = fmt.Fprintf(sh.cc.Out, "Current view: %s\n", sh.mode)
			return false
		}
		mode, err := view.ParseMode(args[0])
		if err != nil {
			sh.errorf("%v", err)
			return false
		}
		sh.mode = mode
		sh.all = len(args) > 1 && strings.EqualFold(args[1], "all")
		if err := sh.render(false); err != nil {
			sh.errorf("%v", err)
		}

	case ".export":
		sh.export(ctx, args)

	case ".open":
		if len(args) != 1 {
			sh.errorf("Usage: .open <file>")
			return false
		}
		res, err := sh.cc.Session.Open(ctx, args[0])
		if err != nil {
			sh.errorf("%v", err)
			return false
		}
		if sh.watcher != nil {
			if err := sh.watcher.Watch(res.Path); err != nil {
				sh.cc.Logger.Warn("failed to watch database", "error", err)
			}
		}
		sh.completer.refresh(ctx, sh.cc.Session)
		sh.printOpen(res)

	case ".clear":
		_, _ = fmt.Fprint(sh.cc.Out, "\033[H\033[2J")

	default:
		sh.errorf("Unknown command: %s (type .help for commands)", command)
	}
	return false
}

// export handles ".export <path>" and ".export <format> <path>".
func (sh *shell) export(ctx context.Context, args []string) {
	var format string
	var outs []string
	switch len(args) {
	case 1:
		outs = args
	case 2:
		format, outs = args[0], args[1:]
	default:
		sh.errorf("Usage: .export [format] <path>")
		return
	}

	targets, err := buildTargets(outs, format)
	if err != nil {
		sh.errorf("%v", err)
		return
	}

	snap := sh.cc.Session.Snapshot()
	if err := sh.cc.Session.ExportAll(ctx, targets); err != nil {
		sh.errorf("%v", err)
		return
	}
	for _, t := range targets {
		sh.cc.Successf("Exported %d rows to %s (%s)", snap.Result.RowCount(), t.Path, t.Format)
	}
}

// render shows the cached result. quiet suppresses the empty-cache notice.
func (sh *shell) render(quiet bool) error {
	snap := sh.cc.Session.Snapshot()
	if snap == nil {
		if !quiet {
			_, _ = fmt.Fprintln(sh.cc.Out, "(no result)")
		}
		return nil
	}
	return view.Render(sh.cc.Out, sh.mode, snap.Result, sh.cc.Cfg.ViewOptions(sh.all))
}

func (sh *shell) printOpen(res *session.OpenResult) {
	sh.cc.Successf("%s", res.Message)
	switch {
	case res.PreviewErr != nil:
		sh.errorf("preview failed: %v", res.PreviewErr)
	case res.PreviewQuery == "":
		_, _ = fmt.Fprintln(sh.cc.Out, sh.cc.Styles.Muted.Render("No tables found."))
	default:
		_, _ = fmt.Fprintln(sh.cc.Out, sh.cc.Styles.Info.Render(res.PreviewQuery))
		if err := sh.render(true); err != nil {
			sh.errorf("%v", err)
		}
	}
	_, _ = fmt.Fprintln(sh.cc.Out)
}

func (sh *shell) errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(sh.cc.Err, sh.cc.ErrStyles.Error.Render(fmt.Sprintf("Error: "+format, args...)))
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .help                     Show this help message
  .tables                   List all tables
  .preview                  Preview the first table again
  .view grid|form|json|md   Re-display the last result with another view
  .view form all            Show every record in the form or json view
  .export [format] <path>   Export the last result (json, csv, xml, xlsx)
  .open <file>              Open another database file
  .clear                    Clear the screen
  .quit / .exit             Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}
