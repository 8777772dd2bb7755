package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

func newEvalCommand(a *app) *cobra.Command {
	var cells []string

	cmd := &cobra.Command{
		Use:   "eval [--cell REF=NUMBER]... <expression>",
		Short: "Evaluate one expression against optional cell values",
		Long: `Evaluate one expression against optional cell values.

An expression that starts with '-' must follow "--" so it is not read as a flag.`,
		Example: `  rcsheet eval "5+3*11"
  rcsheet eval --cell R1C1=3 --cell R22C35=6.5 "R1C1*R22C35"
  rcsheet eval -- -3^2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseCellValues(cells)
			if err != nil {
				return err
			}

			expression := strings.Join(args, " ")
			result, err := spreadsheet.Evaluate(expression, values)
			if err != nil {
				return fmt.Errorf("evaluate %q: %w", expression, err)
			}
			a.logger.WithField("expression", expression).Debug("evaluated")

			fmt.Fprintln(cmd.OutOrStdout(), formatNumber(result))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&cells, "cell", nil, "cell value as REF=NUMBER, repeatable")
	return cmd
}

// parseCellValues turns REF=NUMBER pairs into an evaluation map keyed by
// canonical reference
func parseCellValues(pairs []string) (map[string]float64, error) {
	values := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		ref, number, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("cell %q: expected REF=NUMBER", pair)
		}

		ref = strings.ToUpper(strings.TrimSpace(ref))
		if !spreadsheet.IsCellRef(ref) {
			return nil, fmt.Errorf("cell %q: %w", pair, spreadsheet.NewError(spreadsheet.ErrorCodeBadCellRef, ""))
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", pair, err)
		}
		values[spreadsheet.CanonicalCellRef(ref)] = v
	}
	return values, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
