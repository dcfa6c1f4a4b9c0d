package commands

import (
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables <file>",
		Short: "List the tables of a database file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, _, cleanup, err := OpenCommandContext(cmd, args[0], false)
			if err != nil {
				return err
			}
			defer cleanup()

			tables, err := cc.Session.Tables(cmd.Context())
			if err != nil {
				return err
			}
			return renderMatrix(cc.Out, cc.Cfg, tables)
		},
	}
	return cmd
}
