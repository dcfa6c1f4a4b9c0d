package commands

import (
	"fmt"

	"github.com/leapstack-labs/dbmitra/pkg/export"
	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input        string
	All          bool
	Export       []string
	ExportFormat string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <file> [SQL]",
		Short: "Run a SQL statement against a database file",
		Long: `Run a SQL statement against a SQLite or DuckDB database file.

The statement is taken from the argument, from --input, or from stdin when
it is piped. The result is shown with the configured view (--output) and
can be exported at the same time with --export.`,
		Example: `  # Execute SQL directly
  dbmitra query app.db "SELECT * FROM users"

  # Read SQL from a file, show every record as a form
  dbmitra query app.db -i report.sql -o form --all

  # Pipe SQL and export the result
  echo "SELECT * FROM orders" | dbmitra query app.db --export orders.csv`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Show every record in form and json views")
	cmd.Flags().StringSliceVar(&opts.Export, "export", nil, "Also export the result to this path (repeatable)")
	cmd.Flags().StringVar(&opts.ExportFormat, "export-format", "", "Export format (default: from the path extension)")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	var arg string
	if len(args) > 1 {
		arg = args[1]
	}
	sql, err := readSQL(arg, opts.Input, cmd.InOrStdin(), true)
	if err != nil {
		return err
	}

	var targets []export.Target
	if len(opts.Export) > 0 {
		t, err := buildTargets(opts.Export, opts.ExportFormat)
		if err != nil {
			return err
		}
		targets = t
	}

	cc, cleanup := NewCommandContext(cmd)
	defer cleanup()

	if _, err := cc.Session.Connect(cmd.Context(), args[0]); err != nil {
		return err
	}

	snap, err := cc.Session.Run(cmd.Context(), sql)
	if err != nil {
		return err
	}
	if err := cc.RenderSnapshot(snap, opts.All); err != nil {
		return err
	}

	if len(targets) > 0 {
		if err := cc.Session.ExportAll(cmd.Context(), targets); err != nil {
			return err
		}
		for _, t := range targets {
			_, _ = fmt.Fprintln(cc.Err, cc.ErrStyles.Success.Render(
				fmt.Sprintf("Exported %d rows to %s (%s)", snap.Result.RowCount(), t.Path, t.Format)))
		}
	}
	return nil
}
