package spreadsheet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// CellLookup resolves a cell reference to its current numeric value. ok is
// false when the cell has no value, in which case it counts as 0.
type CellLookup interface {
	Lookup(ref string) (value float64, ok bool)
}

// CellValues is a flat CellRef -> number snapshot
type CellValues map[string]float64

func (cv CellValues) Lookup(ref string) (float64, bool) {
	if v, ok := cv[ref]; ok {
		return v, true
	}
	if IsCellRef(ref) {
		v, ok := cv[CanonicalCellRef(ref)]
		return v, ok
	}
	return 0, false
}

// ParserState names the parser's position in the grammar
type ParserState int

const (
	StateExpectPrimary ParserState = iota
	StateExpectOperatorOrEnd
	StateExpectArgOrClose
	StateExpectCommaOrClose
)

var parserStateNames = map[ParserState]string{
	StateExpectPrimary:       "a number, reference, '(' or function",
	StateExpectOperatorOrEnd: "an operator or the end",
	StateExpectArgOrClose:    "an argument or ')'",
	StateExpectCommaOrClose:  "',' or ')'",
}

func (s ParserState) String() string {
	if name, ok := parserStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ParserState(%d)", int(s))
}

// frame tracks how many function-call frames are open and how many
// parentheses are open inside the innermost one. together they decide
// whether ',' and ')' may end the current expression.
type frame struct {
	calls  int
	parens int
}

func (f frame) commaAllowed() bool {
	return f.calls > 0 && f.parens == 0
}

func (f frame) closeAllowed() bool {
	return f.calls > 0 || f.parens > 0
}

// Parser is a recursive-descent evaluator over a token slice. the grammar,
// lowest precedence first:
//
//	expression := term ( ('+' | '-') term )*
//	term       := power ( ('*' | '/' | '%') power )*
//	power      := primary ( '^' power )?
//	primary    := number | cellref | '(' expression ')' | function
//	function   := WORD '(' args? ')'
//	args       := expression ( ',' expression )*
type Parser struct {
	tokens    []Token
	pos       int
	state     ParserState
	cells     CellLookup
	functions *BuiltInFunctions
}

// NewParser creates a parser over tokens that resolves references through
// cells and dispatches calls through functions
func NewParser(tokens []Token, cells CellLookup, functions *BuiltInFunctions) *Parser {
	if cells == nil {
		cells = CellValues(nil)
	}
	if functions == nil {
		functions = defaultFunctions
	}
	return &Parser{
		tokens:    tokens,
		cells:     cells,
		functions: functions,
	}
}

var defaultFunctions = NewDefaultBuiltInFunctions()

// Evaluate tokenizes, parses and computes expression against cells. an
// empty expression is 0. a single leading '=' is accepted and ignored.
func Evaluate(expression string, cells map[string]float64) (float64, error) {
	return EvaluateTokens(Tokenize(expression), CellValues(cells), nil)
}

// EvaluateTokens computes an already tokenized expression
func EvaluateTokens(tokens []Token, cells CellLookup, functions *BuiltInFunctions) (float64, error) {
	if len(tokens) > 0 && tokens[0].Type == TokenSymbol && tokens[0].Value == string(charEquals) {
		tokens = tokens[1:]
	}
	return NewParser(tokens, cells, functions).Parse()
}

// Parse evaluates the whole token slice as one top-level expression
func (p *Parser) Parse() (float64, error) {
	if len(p.tokens) == 0 {
		return 0, nil
	}

	value, err := p.parseExpression(frame{})
	if err != nil {
		return 0, err
	}

	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		return 0, newErrorf(ErrorCodeBadExpression, "Unexpected %q after expression at position %d", tok.Value, tok.Pos)
	}

	return value, nil
}

// State returns where the parser stopped, for diagnostics
func (p *Parser) State() ParserState {
	return p.state
}

func (p *Parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) next() (Token, error) {
	tok, ok := p.peek()
	if !ok {
		return Token{}, newErrorf(ErrorCodeInsufficientTokens, "Expression ended unexpectedly, expected %s", p.state)
	}
	p.pos++
	return tok, nil
}

// parseExpression handles addition and subtraction. a '-' at the very start
// is read as if an implicit 0 preceded it, so "-3^2" is 0-(3^2).
func (p *Parser) parseExpression(f frame) (float64, error) {
	var left float64
	if tok, ok := p.peek(); ok && tok.Type == TokenOperator && tok.Value == string(charMinus) {
		left = 0
	} else {
		var err error
		left, err = p.parseTerm(f)
		if err != nil {
			return 0, err
		}
	}

	for {
		p.state = StateExpectOperatorOrEnd
		tok, ok := p.peek()
		if !ok {
			return left, nil
		}

		switch {
		case tok.Type == TokenOperator && (tok.Value == "+" || tok.Value == "-"):
			p.pos++
			right, err := p.parseTerm(f)
			if err != nil {
				return 0, err
			}
			if tok.Value == "+" {
				left += right
			} else {
				left -= right
			}

		case tok.Type == TokenRightParen:
			if !f.closeAllowed() {
				return 0, newErrorf(ErrorCodeMissingOpenParen, "Missing opening parenthesis for ')' at position %d", tok.Pos)
			}
			return left, nil

		case tok.Type == TokenSymbol && tok.Value == string(charComma):
			if !f.commaAllowed() {
				return 0, newErrorf(ErrorCodeUnexpectedComma, "Unexpected comma at position %d", tok.Pos)
			}
			return left, nil

		default:
			// the caller decides whether what follows is legal
			return left, nil
		}
	}
}

// parseTerm handles multiplication, division, and modulo
func (p *Parser) parseTerm(f frame) (float64, error) {
	left, err := p.parsePower(f)
	if err != nil {
		return 0, err
	}

	for {
		tok, ok := p.peek()
		if !ok {
			return left, nil
		}

		isMul := tok.Type == TokenOperator && (tok.Value == "*" || tok.Value == "/")
		isMod := tok.Type == TokenSymbol && tok.Value == string(charPercent)
		if !isMul && !isMod {
			return left, nil
		}

		p.pos++
		right, err := p.parsePower(f)
		if err != nil {
			return 0, err
		}

		switch tok.Value {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, NewError(ErrorCodeDivideByZero, "Divide by zero")
			}
			left /= right
		default:
			if right == 0 {
				return 0, NewError(ErrorCodeDivideByZero, "Modulus by zero")
			}
			left = math.Mod(left, right)
		}
	}
}

// parsePower handles exponentiation
func (p *Parser) parsePower(f frame) (float64, error) {
	base, err := p.parsePrimary(f)
	if err != nil {
		return 0, err
	}

	// right-associative
	if tok, ok := p.peek(); ok && tok.Type == TokenSymbol && tok.Value == string(charCaret) {
		p.pos++
		exponent, err := p.parsePower(f) // recursive for right-associativity
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exponent), nil
	}

	return base, nil
}

// parsePrimary handles numbers, references, parenthesised expressions and
// function calls
func (p *Parser) parsePrimary(f frame) (float64, error) {
	p.state = StateExpectPrimary
	tok, err := p.next()
	if err != nil {
		return 0, err
	}

	switch tok.Type {
	case TokenNumber:
		// out-of-range literals become ±Inf
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, newErrorf(ErrorCodeUnexpectedToken, "Invalid number %q", tok.Value)
		}
		return val, nil

	case TokenCellRef:
		val, _ := p.cells.Lookup(tok.Value)
		return val, nil

	case TokenLeftParen:
		val, err := p.parseExpression(frame{calls: f.calls, parens: f.parens + 1})
		if err != nil {
			return 0, err
		}
		closing, ok := p.peek()
		if !ok {
			return 0, NewError(ErrorCodeMissingCloseParen, "Missing closing parenthesis")
		}
		if closing.Type != TokenRightParen {
			return 0, newErrorf(ErrorCodeUnexpectedToken, "Expected ')' but found %q at position %d", closing.Value, closing.Pos)
		}
		p.pos++
		return val, nil

	case TokenWord:
		return p.parseFunctionCall(tok, f)

	default:
		return 0, newErrorf(ErrorCodeUnexpectedToken, "Unexpected %q at position %d", tok.Value, tok.Pos)
	}
}

// parseFunctionCall parses the argument list after a function name and
// applies the function
func (p *Parser) parseFunctionCall(name Token, f frame) (float64, error) {
	open, ok := p.peek()
	if !ok || open.Type != TokenLeftParen {
		return 0, newErrorf(ErrorCodeMissingOpenParen, "Missing opening parenthesis after %s", name.Value)
	}
	p.pos++

	if !p.functions.Has(name.Value) {
		return 0, newErrorf(ErrorCodeUnknownFunction, "Function %s does not exist", name.Value)
	}

	args := []float64{}
	inner := frame{calls: f.calls + 1}

	// check for empty argument list
	p.state = StateExpectArgOrClose
	if tok, ok := p.peek(); ok && tok.Type == TokenRightParen {
		p.pos++
		return p.functions.Call(name.Value, args...)
	}

	for {
		arg, err := p.parseExpression(inner)
		if err != nil {
			return 0, err
		}
		args = append(args, arg)

		p.state = StateExpectCommaOrClose
		tok, ok := p.peek()
		if !ok {
			return 0, newErrorf(ErrorCodeMissingCloseParen, "Missing closing parenthesis for %s", name.Value)
		}
		p.pos++

		if tok.Type == TokenRightParen {
			break
		}
		if tok.Type != TokenSymbol || tok.Value != string(charComma) {
			return 0, newErrorf(ErrorCodeUnexpectedToken, "Expected ',' or ')' in arguments of %s but found %q", name.Value, tok.Value)
		}
	}

	return p.functions.Call(name.Value, args...)
}
