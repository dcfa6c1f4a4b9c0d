package commands

import (
	"errors"
	"strings"

	"github.com/leapstack-labs/dbmitra/pkg/export"
	"github.com/spf13/cobra"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Input  string
	Out    []string
	Format string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <file> [SQL]",
		Short: "Export a query result to JSON, CSV, XML or XLSX",
		Long: `Run a SQL statement and write its result to one or more files.

Without a statement the automatic preview of the first table is exported.
The format is taken from --format or from each destination's extension.
A .gz or .zst suffix compresses the output. Each file is written to a
temporary file first and renamed into place, so an existing destination is
never left half-written.`,
		Example: `  # Export a table as CSV
  dbmitra export app.db "SELECT * FROM users" --out users.csv

  # Several formats at once, one compressed
  dbmitra export app.db "SELECT * FROM users" -O users.json -O users.xml.gz

  # Force the format
  dbmitra export app.db -i report.sql -O report.out -f xlsx`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().StringSliceVarP(&opts.Out, "out", "O", nil, "Destination file (repeatable)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Export format: "+strings.Join(export.Formats(), ", "))

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return export.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *ExportOptions) error {
	targets, err := buildTargets(opts.Out, opts.Format)
	if err != nil {
		return err
	}

	var arg string
	if len(args) > 1 {
		arg = args[1]
	}
	sql, err := readSQL(arg, opts.Input, nil, false)
	if err != nil && !errors.Is(err, errNoSQL) {
		return err
	}

	cc, res, cleanup, err := OpenCommandContext(cmd, args[0], sql == "")
	if err != nil {
		return err
	}
	defer cleanup()

	if sql != "" {
		if _, err := cc.Session.Run(cmd.Context(), sql); err != nil {
			return err
		}
	} else if res.PreviewErr != nil {
		return res.PreviewErr
	}

	snap := cc.Session.Snapshot()
	if err := cc.Session.ExportAll(cmd.Context(), targets); err != nil {
		return err
	}

	for _, t := range targets {
		cc.Successf("Exported %d rows to %s (%s)", snap.Result.RowCount(), t.Path, t.Format)
	}
	return nil
}
