package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vogtb/go-spreadsheet/packages/sheetfile"
	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
	"go.uber.org/multierr"
)

const prompt = "> "

var errNoPath = errors.New("no file to save to, use: save <path>")

func newReplCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [file.csv]",
		Short: "Edit a sheet interactively",
		Long: `Edit a sheet line by line:

  R1C1 = <instruction>   store a literal or a formula (=...)
  R1C1 =                 clear a cell
  get R1C1               print a cell
  show                   print the grid
  save [path]            write the sheet as CSV
  quit                   leave`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := &session{
				out:    cmd.OutOrStdout(),
				logger: a.logger,
			}

			if len(args) == 1 {
				sess.path = args[0]
				s, err := sheetfile.LoadFile(sess.path,
					sheetfile.WithDimensions(a.cfg.Sheet.Rows, a.cfg.Sheet.Columns),
					sheetfile.WithLogger(a.logger))
				if s == nil {
					return fmt.Errorf("load %s: %w", sess.path, err)
				}
				sess.report(err)
				sess.sheet = s
			} else {
				sess.sheet = spreadsheet.NewSpreadsheet(a.cfg.Sheet.Rows, a.cfg.Sheet.Columns,
					spreadsheet.WithLogger(a.logger))
			}

			return sess.run(cmd.InOrStdin())
		},
	}
}

// session is one interactive editing run over a single sheet
type session struct {
	sheet  *spreadsheet.Spreadsheet
	path   string
	out    io.Writer
	logger logrus.FieldLogger
}

func (s *session) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		quit, err := s.execute(scanner.Text())
		s.report(err)
		if quit {
			return nil
		}
	}
}

// execute runs one input line. errors are for display; the session goes on.
func (s *session) execute(line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(word) {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "show":
		return false, renderGrid(s.out, s.sheet)
	case "get":
		return false, s.get(rest)
	case "save":
		return false, s.save(rest)
	}

	ref, instruction, ok := strings.Cut(line, "=")
	if !ok {
		return false, fmt.Errorf("unknown command %q", line)
	}
	return false, s.set(strings.TrimSpace(ref), instruction)
}

func (s *session) set(ref, instruction string) error {
	err := s.sheet.SetCellInstructions(instruction, strings.ToUpper(ref))
	if spreadsheet.CodeOf(err) == spreadsheet.ErrorCodeBadCellRef || spreadsheet.CodeOf(err) == spreadsheet.ErrorCodeCycle {
		return err
	}
	fmt.Fprintln(s.out, describe(s.sheet, strings.ToUpper(ref)))
	return err
}

func (s *session) get(ref string) error {
	ref = strings.ToUpper(ref)
	if _, err := s.sheet.GetCellInstructions(ref); err != nil {
		return err
	}
	fmt.Fprintln(s.out, describe(s.sheet, ref))
	return nil
}

func (s *session) save(path string) error {
	if path == "" {
		path = s.path
	}
	if path == "" {
		return errNoPath
	}
	if err := sheetfile.SaveFile(path, s.sheet); err != nil {
		return err
	}
	s.path = path
	fmt.Fprintf(s.out, "saved %s\n", path)
	return nil
}

// report prints every error in err, one per line
func (s *session) report(err error) {
	for _, e := range multierr.Errors(err) {
		s.logger.WithError(e).Debug("repl error")
		fmt.Fprintf(s.out, "error: %v\n", e)
	}
}

// describe renders a cell for the session, with the formula when there is one
func describe(s *spreadsheet.Spreadsheet, ref string) string {
	cell, ok := s.GetCell(ref)
	if !ok {
		return ref + " is empty"
	}
	text := fmt.Sprintf("%s = %s", ref, displayValue(s, ref))
	if cell.IsFormula() {
		text += "  " + cell.Instruction
	}
	return text
}
