package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewOpenCommand creates the open command.
func NewOpenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <file>",
		Short: "Open a database file and preview its first table",
		Long: `Open a SQLite or DuckDB database file.

The engine is chosen by file extension (.db, .sqlite, .sqlite3 for SQLite;
.duckdb, .ddb for DuckDB) unless --engine is given. The first table is
previewed with SELECT * ... LIMIT <preview_limit>.`,
		Example: `  # Open and preview
  dbmitra open ./app.db

  # Preview 10 rows as a form
  dbmitra open ./app.db --preview-limit 10 -o form`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, res, cleanup, err := OpenCommandContext(cmd, args[0], true)
			if err != nil {
				return err
			}
			defer cleanup()

			cc.Successf("%s", res.Message)

			if res.PreviewErr != nil {
				cc.Warnf("preview failed: %v", res.PreviewErr)
				return nil
			}
			if res.PreviewQuery == "" {
				_, _ = fmt.Fprintln(cc.Out, cc.Styles.Muted.Render("No tables found."))
				return nil
			}

			_, _ = fmt.Fprintf(cc.Out, "\n%s\n", cc.Styles.Info.Render(res.PreviewQuery))
			return cc.Render(false)
		},
	}
	return cmd
}
