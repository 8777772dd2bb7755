package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vogtb/go-spreadsheet/packages/sheetfile"
	"go.uber.org/multierr"
)

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file.csv>",
		Short: "Print the computed values of a saved sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sheetfile.LoadFile(args[0], sheetfile.WithLogger(a.logger))
			if s == nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			for _, e := range multierr.Errors(err) {
				a.logger.WithError(e).Warn("cell failed to evaluate")
			}
			return renderGrid(cmd.OutOrStdout(), s)
		},
	}
}
