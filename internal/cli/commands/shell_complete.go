package commands

import (
	"context"
	"sync/atomic"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/dbmitra/internal/cli/view"
	"github.com/leapstack-labs/dbmitra/internal/session"
	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/leapstack-labs/dbmitra/pkg/export"
)

// tableCompleter is a readline completer whose table list can be swapped
// while the prompt is active.
type tableCompleter struct {
	pc atomic.Pointer[readline.PrefixCompleter]
}

func newTableCompleter() *tableCompleter {
	c := &tableCompleter{}
	c.pc.Store(buildCompleter(nil))
	return c
}

// Do implements readline.AutoCompleter.
func (c *tableCompleter) Do(line []rune, pos int) ([][]rune, int) {
	return c.pc.Load().Do(line, pos)
}

// refresh reloads table names from the open database. Failures keep the
// previous list.
func (c *tableCompleter) refresh(ctx context.Context, sess *session.Session) {
	tables, err := sess.Tables(ctx)
	if err != nil {
		return
	}
	c.pc.Store(buildCompleter(tableNames(tables)))
}

func tableNames(tables core.Matrix) []string {
	var names []string
	for _, row := range tables.Rows() {
		if len(row) == 0 {
			continue
		}
		if name, ok := row[0].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

func buildCompleter(tables []string) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range tables {
		items = append(items, readline.PcItem(name))
	}

	viewItems := make([]readline.PrefixCompleterInterface, 0, len(view.Modes))
	for _, m := range view.Modes {
		viewItems = append(viewItems, readline.PcItem(m))
	}
	formatItems := make([]readline.PrefixCompleterInterface, 0, len(export.Formats()))
	for _, f := range export.Formats() {
		formatItems = append(formatItems, readline.PcItem(f))
	}

	// Add dot-commands
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".preview"),
		readline.PcItem(".view", viewItems...),
		readline.PcItem(".export", formatItems...),
		readline.PcItem(".open"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
