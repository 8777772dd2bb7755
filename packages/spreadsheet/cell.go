package spreadsheet

import (
	"errors"
	"fmt"
)

// ErrorCode tags every failure raised by the evaluator or the engine
type ErrorCode uint8

const (
	ErrorCodeBadCellRef         ErrorCode = 1  // reference does not match R<r>C<c>
	ErrorCodeDivideByZero       ErrorCode = 2  // right operand of / or % is 0
	ErrorCodeMissingOpenParen   ErrorCode = 3  // ')' with nothing to close
	ErrorCodeMissingCloseParen  ErrorCode = 4  // '(' never closed
	ErrorCodeUnknownFunction    ErrorCode = 5  // name not in the function registry
	ErrorCodeUnexpectedToken    ErrorCode = 6  // token illegal in the current parser state
	ErrorCodeUnexpectedComma    ErrorCode = 7  // ',' outside a function argument list
	ErrorCodeInsufficientTokens ErrorCode = 8  // ran out of tokens mid-parse
	ErrorCodeBadExpression      ErrorCode = 9  // leftover tokens after the expression
	ErrorCodeCycle              ErrorCode = 10 // edit would create a circular dependency
)

// ErrorMapper maps error codes to their tag names
var ErrorMapper = map[ErrorCode]string{
	ErrorCodeBadCellRef:         "BadCellRef",
	ErrorCodeDivideByZero:       "DivideByZero",
	ErrorCodeMissingOpenParen:   "MissingOpenParen",
	ErrorCodeMissingCloseParen:  "MissingCloseParen",
	ErrorCodeUnknownFunction:    "UnknownFunction",
	ErrorCodeUnexpectedToken:    "UnexpectedToken",
	ErrorCodeUnexpectedComma:    "UnexpectedComma",
	ErrorCodeInsufficientTokens: "InsufficientTokens",
	ErrorCodeBadExpression:      "BadExpression",
	ErrorCodeCycle:              "Cycle",
}

func (c ErrorCode) String() string {
	if name, ok := ErrorMapper[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

// Error is the single error kind surfaced by the core. the message is meant
// for display to the user.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code.String()
}

// Is reports whether target is an *Error with the same code, so callers can
// write errors.Is(err, &Error{Code: ErrorCodeCycle})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewError(code ErrorCode, message string) *Error {
	if message == "" {
		message = code.String()
	}
	return &Error{
		Code:    code,
		Message: message,
	}
}

func newErrorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// CodeOf returns the code of the first *Error found in err's chain, or 0
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// Cell is a single populated cell: the text the user typed and the result of
// its most recent evaluation.
type Cell struct {
	Instruction string  // literal text or a formula starting with '='
	Value       float64 // meaningful only when HasValue is set
	HasValue    bool    // false for non-numeric literals and failed formulas
}

// IsFormula reports whether the instruction is evaluated as an expression
func (c *Cell) IsFormula() bool {
	return isFormula(c.Instruction)
}

// Body returns the formula body (the text after '='), or "" for literals
func (c *Cell) Body() string {
	if !c.IsFormula() {
		return ""
	}
	return c.Instruction[1:]
}

func (c *Cell) setValue(v float64) {
	c.Value = v
	c.HasValue = true
}

func (c *Cell) clearValue() {
	c.Value = 0
	c.HasValue = false
}

func isFormula(instruction string) bool {
	return len(instruction) > 0 && instruction[0] == '='
}
