// Package sheetfile stores a spreadsheet's instruction grid as CSV: one
// record per row, one field per column, empty fields for empty cells.
package sheetfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
	"go.uber.org/multierr"
)

// Option configures Load
type Option func(*options)

type options struct {
	rows    int
	columns int
	sheet   []spreadsheet.Option
}

// WithDimensions sets the declared grid size. the loaded sheet is never
// smaller than the file.
func WithDimensions(rows, columns int) Option {
	return func(o *options) {
		o.rows = rows
		o.columns = columns
	}
}

// WithLogger passes logger through to the loaded spreadsheet
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.sheet = append(o.sheet, spreadsheet.WithLogger(logger))
	}
}

// Save writes the instruction grid of s to w. the grid covers the declared
// dimensions and any populated cell outside them.
func Save(w io.Writer, s *spreadsheet.Spreadsheet) error {
	rows, columns := extent(s)

	cw := csv.NewWriter(w)
	record := make([]string, columns)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			instruction, err := s.GetCellInstructionsAt(row, col)
			if err != nil {
				return err
			}
			record[col] = instruction
		}

		// csv writes a lone empty field as a blank line, which readers
		// skip, so quote it to keep the row
		if columns == 1 && record[0] == "" {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			if _, err := io.WriteString(w, emptyRecord); err != nil {
				return fmt.Errorf("write row %d: %w", row+1, err)
			}
			continue
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const emptyRecord = "\"\"\n"

// SaveFile writes s to path through a temporary file in the same directory,
// so a reader never sees a partial file
func SaveFile(path string, s *spreadsheet.Spreadsheet) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if err = Save(f, s); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.Name(), err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// Load reads a CSV instruction grid into a new spreadsheet.
//
// evaluation failures do not stop the load: the sheet is returned together
// with every failure of the final recompute. a circular dependency aborts
// the load and no sheet is returned.
func Load(r io.Reader, opts ...Option) (*spreadsheet.Spreadsheet, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	rows, columns := o.rows, o.columns
	rows = max(rows, len(records))
	for _, record := range records {
		columns = max(columns, len(record))
	}

	s := spreadsheet.NewSpreadsheet(rows, columns, o.sheet...)
	for row, record := range records {
		for col, field := range record {
			if field == "" {
				continue
			}
			// only a cycle is fatal here; evaluation failures are
			// reported once, after the final recompute
			err := s.SetCellInstructionsAt(field, row, col)
			if spreadsheet.CodeOf(err) == spreadsheet.ErrorCodeCycle {
				return nil, fmt.Errorf("%s: %w", s.ToCellRef(row, col), err)
			}
		}
	}

	var errs error
	multierr.AppendInto(&errs, s.Recalculate())
	return s, errs
}

// LoadFile opens path and loads it
func LoadFile(path string, opts ...Option) (s *spreadsheet.Spreadsheet, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	return Load(f, opts...)
}

// extent returns the grid Save writes: the declared size grown to include
// every populated cell
func extent(s *spreadsheet.Spreadsheet) (rows, columns int) {
	rows, columns = s.RowCount(), s.ColumnCount()
	for _, ref := range s.Cells() {
		row, col, err := spreadsheet.ParseCellRef(ref)
		if err != nil {
			continue
		}
		rows = max(rows, row)
		columns = max(columns, col)
	}
	return rows, columns
}
