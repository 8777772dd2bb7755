package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

const errorMarker = "#ERR"

// displayValue is what a cell shows in the grid: its number, its text for
// non-numeric literals, or a marker for a formula that failed
func displayValue(s *spreadsheet.Spreadsheet, ref string) string {
	cell, ok := s.GetCell(ref)
	switch {
	case !ok:
		return ""
	case cell.HasValue:
		return formatNumber(cell.Value)
	case cell.IsFormula():
		return errorMarker
	default:
		return cell.Instruction
	}
}

// renderGrid prints the populated part of s, from R1C1 to the furthest
// populated row and column
func renderGrid(w io.Writer, s *spreadsheet.Spreadsheet) error {
	rows, columns := 0, 0
	for _, ref := range s.Cells() {
		row, col, err := spreadsheet.ParseCellRef(ref)
		if err != nil {
			continue
		}
		rows, columns = max(rows, row), max(columns, col)
	}
	if rows == 0 || columns == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := make([]string, 0, columns+1)
	header = append(header, "")
	for col := 1; col <= columns; col++ {
		header = append(header, fmt.Sprintf("C%d", col))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for row := 1; row <= rows; row++ {
		fields := make([]string, 0, columns+1)
		fields = append(fields, fmt.Sprintf("R%d", row))
		for col := 1; col <= columns; col++ {
			fields = append(fields, displayValue(s, spreadsheet.FormatCellRef(row, col)))
		}
		fmt.Fprintln(tw, strings.Join(fields, "\t")+"\t")
	}
	return tw.Flush()
}
