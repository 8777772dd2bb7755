package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Spreadsheet combines cell storage, the formula cache, dependency tracking
// and expression evaluation. every edit triggers a full recompute; an edit
// that would make the dependency graph cyclic is rolled back.
//
// a Spreadsheet is not safe for concurrent use.
type Spreadsheet struct {
	storage   *Storage
	functions *BuiltInFunctions
	rows      int
	columns   int
	logger    logrus.FieldLogger
}

// Option configures a Spreadsheet
type Option func(*Spreadsheet)

// WithLogger routes the engine's diagnostics to logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Spreadsheet) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFunctions replaces the function registry used by formulas
func WithFunctions(functions *BuiltInFunctions) Option {
	return func(s *Spreadsheet) {
		if functions != nil {
			s.functions = functions
		}
	}
}

// NewSpreadsheet creates an empty spreadsheet of the declared dimensions
func NewSpreadsheet(rows, columns int, opts ...Option) *Spreadsheet {
	s := &Spreadsheet{
		storage:   newStorage(),
		functions: defaultFunctions,
		rows:      max(rows, 0),
		columns:   max(columns, 0),
		logger:    discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type SpreadsheetInterface interface {
	// cell methods

	GetCellValue(ref string) (float64, error)
	GetCellInstructions(ref string) (string, error)
	GetCellInstructionsAt(row, col int) (string, error)
	SetCellInstructions(instruction, ref string) error
	SetCellInstructionsAt(instruction string, row, col int) error

	// dimension methods

	RowCount() int
	ColumnCount() int
	Size() int
	ToCellRef(row, col int) string
}

// Implementation of SpreadsheetInterface

var _ SpreadsheetInterface = (*Spreadsheet)(nil)

// resolveRef validates a reference and returns its canonical form
func resolveRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if !IsCellRef(ref) {
		return "", newErrorf(ErrorCodeBadCellRef, "Row and column designation %q is not properly formatted", ref)
	}
	return CanonicalCellRef(ref), nil
}

// GetCellValue returns the numeric value of a cell. cells with no entry, and
// cells whose instruction has no numeric value, read as 0.
func (s *Spreadsheet) GetCellValue(ref string) (float64, error) {
	ref, err := resolveRef(ref)
	if err != nil {
		return 0, err
	}
	cell, exists := s.storage.get(ref)
	if !exists || !cell.HasValue {
		return 0, nil
	}
	return cell.Value, nil
}

// GetCellInstructions returns the stored instruction, or "" when the cell
// has no entry
func (s *Spreadsheet) GetCellInstructions(ref string) (string, error) {
	ref, err := resolveRef(ref)
	if err != nil {
		return "", err
	}
	cell, exists := s.storage.get(ref)
	if !exists {
		return "", nil
	}
	return cell.Instruction, nil
}

// GetCellInstructionsAt is GetCellInstructions for zero-based coordinates
func (s *Spreadsheet) GetCellInstructionsAt(row, col int) (string, error) {
	return s.GetCellInstructions(s.ToCellRef(row, col))
}

// GetCell returns a copy of the cell at ref
func (s *Spreadsheet) GetCell(ref string) (Cell, bool) {
	ref, err := resolveRef(ref)
	if err != nil {
		return Cell{}, false
	}
	cell, exists := s.storage.get(ref)
	if !exists {
		return Cell{}, false
	}
	return *cell, true
}

// SetCellInstructions stores instruction at ref and recomputes the sheet.
//
// the instruction is trimmed; an empty instruction removes the cell. a
// formula (leading '=') is upper-cased, a literal is kept verbatim. if the
// edit would create a circular dependency the previous instruction is put
// back, no value changes, and an ErrorCodeCycle error is returned. an
// evaluation failure leaves the edit in place, clears the failing cells'
// values and is returned.
func (s *Spreadsheet) SetCellInstructions(instruction, ref string) error {
	ref, err := resolveRef(ref)
	if err != nil {
		return err
	}
	log := s.logger.WithField("cell", ref)

	text := strings.TrimSpace(instruction)
	if text == "" {
		if s.storage.remove(ref) {
			log.Debug("cell cleared")
		}
		// removing a vertex cannot introduce a cycle
		return s.recompute()
	}

	if isFormula(text) {
		text = strings.ToUpper(text)
	}

	previous, existed := "", false
	if cell, ok := s.storage.get(ref); ok {
		previous, existed = cell.Instruction, true
	}
	s.storage.put(ref, text)

	graph := s.storage.buildGraph()
	order, err := graph.CalculationOrder()
	if err != nil {
		if existed {
			s.storage.put(ref, previous)
		} else {
			s.storage.remove(ref)
		}
		log.WithError(err).Warn("edit rejected")
		return err
	}

	s.storage.dependencyGraph = graph
	return s.evaluate(order)
}

// SetCellInstructionsAt is SetCellInstructions for zero-based coordinates
func (s *Spreadsheet) SetCellInstructionsAt(instruction string, row, col int) error {
	return s.SetCellInstructions(instruction, s.ToCellRef(row, col))
}

// Recalculate runs a full recompute pass without changing any instruction
func (s *Spreadsheet) Recalculate() error {
	return s.recompute()
}

// recompute rebuilds the graph from the stored instructions, orders it and
// evaluates every vertex
func (s *Spreadsheet) recompute() error {
	graph := s.storage.buildGraph()
	order, err := graph.CalculationOrder()
	if err != nil {
		s.logger.WithError(err).Error("stored instructions are cyclic")
		return err
	}
	s.storage.dependencyGraph = graph
	return s.evaluate(order)
}

// evaluate computes each vertex in topological order against the values
// produced so far in this pass. a failing formula clears its own value and
// the pass continues; all failures are returned together.
func (s *Spreadsheet) evaluate(order []string) error {
	values := s.storage.snapshot()
	var errs error

	for _, ref := range order {
		cell, _ := s.storage.get(ref)

		if !cell.IsFormula() {
			if IsNumber(cell.Instruction) {
				v, _ := strconv.ParseFloat(cell.Instruction, 64)
				cell.setValue(v)
				values[ref] = v
			} else {
				cell.clearValue()
				delete(values, ref)
			}
			continue
		}

		formulaID, _ := s.storage.formulas.GetFormulaAtCell(ref)
		tokens, _ := s.storage.formulas.GetTokens(formulaID)
		v, err := EvaluateTokens(tokens, values, s.functions)
		if err != nil {
			cell.clearValue()
			delete(values, ref)
			s.logger.WithField("cell", ref).WithError(err).Debug("formula failed")
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", ref, err))
			continue
		}
		cell.setValue(v)
		values[ref] = v
	}

	s.logger.WithField("vertices", len(order)).Debug("recompute finished")
	return errs
}

// Cells returns the populated references in row-major order
func (s *Spreadsheet) Cells() []string {
	return s.storage.refs()
}

// Edges returns the dependency edges of the last accepted recompute
func (s *Spreadsheet) Edges() []Edge {
	return s.storage.dependencyGraph.Edges()
}

// Precedents returns the populated cells that ref's formula mentions
func (s *Spreadsheet) Precedents(ref string) ([]string, error) {
	ref, err := resolveRef(ref)
	if err != nil {
		return nil, err
	}
	return s.storage.dependencyGraph.GetDirectPrecedents(ref), nil
}

// Dependents returns the cells whose formulas mention ref
func (s *Spreadsheet) Dependents(ref string) ([]string, error) {
	ref, err := resolveRef(ref)
	if err != nil {
		return nil, err
	}
	return s.storage.dependencyGraph.GetDirectDependents(ref), nil
}

// RowCount returns the declared number of rows
func (s *Spreadsheet) RowCount() int {
	return s.rows
}

// ColumnCount returns the declared number of columns
func (s *Spreadsheet) ColumnCount() int {
	return s.columns
}

// Size returns the number of cells in the declared grid
func (s *Spreadsheet) Size() int {
	return s.rows * s.columns
}

// ToCellRef converts zero-based coordinates to a one-based reference
func (s *Spreadsheet) ToCellRef(row, col int) string {
	return FormatCellRef(row+1, col+1)
}
