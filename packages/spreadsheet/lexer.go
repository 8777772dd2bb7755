package spreadsheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType represents different types of tokens in formulas
type TokenType int

const (
	TokenCellRef TokenType = iota
	TokenNumber
	TokenOperator   // + - * /
	TokenLeftParen  // (
	TokenRightParen // )
	TokenWord       // function name candidate
	TokenSymbol     // any other single character, e.g. , % ^
)

var tokenTypeNames = map[TokenType]string{
	TokenCellRef:    "CellRef",
	TokenNumber:     "Number",
	TokenOperator:   "Operator",
	TokenLeftParen:  "LeftParen",
	TokenRightParen: "RightParen",
	TokenWord:       "Word",
	TokenSymbol:     "Symbol",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token with position information
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte position in the preprocessed input
}

// character classification constants. slightly easier to read.
const (
	charLParen     = '('
	charRParen     = ')'
	charAsterisk   = '*'
	charPlus       = '+'
	charComma      = ','
	charMinus      = '-'
	charPeriod     = '.'
	charSlash      = '/'
	charPercent    = '%'
	charCaret      = '^'
	charEquals     = '='
	charUnderscore = '_'
	charR          = 'R'
	charC          = 'C'
)

var (
	cellRefPattern      = regexp.MustCompile(`R[0-9]+C[0-9]+`)
	cellRefExactPattern = regexp.MustCompile(`^R[0-9]+C[0-9]+$`)
	numberPattern       = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
	wordPattern         = regexp.MustCompile(`^[A-Z0-9_]+$`)
)

// Lexer splits a formula body into tokens. it never fails: anything it does
// not recognise becomes a single-character symbol token and is rejected by
// the parser.
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

// NewLexer creates a lexer over the upper-cased, whitespace-free form of input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: preprocess(input),
	}
}

// Tokenize converts an expression into its ordered token sequence
func Tokenize(expression string) []Token {
	return NewLexer(expression).Tokenize()
}

// Tokenize scans the whole input, emitting at each position the first
// alternative that matches: cell reference, decimal, integer, operator or
// paren, word, and finally any single character
func (l *Lexer) Tokenize() []Token {
	l.tokens = make([]Token, 0, len(l.input)/2+1)
	for l.pos < len(l.input) {
		l.tokens = append(l.tokens, l.nextToken())
	}
	return l.tokens
}

func (l *Lexer) nextToken() Token {
	start := l.pos
	ch := l.input[l.pos]

	if ch == charR {
		if end, ok := l.matchCellRef(start); ok {
			l.pos = end
			return Token{Type: TokenCellRef, Value: l.input[start:end], Pos: start}
		}
	}

	if isDigit(ch) {
		return l.scanNumber()
	}

	switch ch {
	case charPlus, charMinus, charAsterisk, charSlash:
		l.pos++
		return Token{Type: TokenOperator, Value: string(ch), Pos: start}
	case charLParen:
		l.pos++
		return Token{Type: TokenLeftParen, Value: "(", Pos: start}
	case charRParen:
		l.pos++
		return Token{Type: TokenRightParen, Value: ")", Pos: start}
	}

	if isWordChar(ch) {
		for l.pos < len(l.input) && isWordChar(l.input[l.pos]) {
			l.pos++
		}
		return Token{Type: TokenWord, Value: l.input[start:l.pos], Pos: start}
	}

	// whole rune, so multi-byte characters stay intact
	_, size := utf8.DecodeRuneInString(l.input[start:])
	l.pos += size
	return Token{Type: TokenSymbol, Value: l.input[start:l.pos], Pos: start}
}

// matchCellRef reports where an R<digits>C<digits> run starting at start ends
func (l *Lexer) matchCellRef(start int) (int, bool) {
	i := start + 1
	rowStart := i
	for i < len(l.input) && isDigit(l.input[i]) {
		i++
	}
	if i == rowStart || i >= len(l.input) || l.input[i] != charC {
		return 0, false
	}
	i++
	colStart := i
	for i < len(l.input) && isDigit(l.input[i]) {
		i++
	}
	if i == colStart {
		return 0, false
	}
	return i, true
}

// scanNumber reads digits and, when a '.' is followed by another digit, the
// fractional part as well
func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.input) && l.input[l.pos] == charPeriod && isDigit(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	return Token{Type: TokenNumber, Value: l.input[start:l.pos], Pos: start}
}

// preprocess upper-cases the input and drops all ASCII whitespace
func preprocess(input string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return -1
		}
		return r
	}, strings.ToUpper(input))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordChar(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || isDigit(ch) || ch == charUnderscore
}

// IsCellRef reports whether token is exactly R<digits>C<digits>
func IsCellRef(token string) bool {
	return cellRefExactPattern.MatchString(token)
}

// IsNumber reports whether token is an optionally negative integer or decimal
func IsNumber(token string) bool {
	return numberPattern.MatchString(token)
}

// IsWord reports whether token is made only of A-Z, digits and underscores
func IsWord(token string) bool {
	return wordPattern.MatchString(token)
}

// CellRefsOf returns every distinct cell reference in expression, in order
// of first occurrence
func CellRefsOf(expression string) []string {
	matches := cellRefPattern.FindAllString(expression, -1)
	seen := make(map[string]struct{}, len(matches))
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		refs = append(refs, m)
	}
	return refs
}

// CanonicalCellRef strips leading zeros from both coordinates so that two
// references naming the same row and column compare equal as strings.
// the input must already satisfy IsCellRef.
func CanonicalCellRef(ref string) string {
	c := strings.IndexByte(ref, charC)
	return "R" + trimZeros(ref[1:c]) + "C" + trimZeros(ref[c+1:])
}

func trimZeros(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// ParseCellRef splits a reference into its one-based row and column
func ParseCellRef(ref string) (row, col int, err error) {
	if !IsCellRef(ref) {
		return 0, 0, newErrorf(ErrorCodeBadCellRef, "Bad cell reference: %q", ref)
	}
	c := strings.IndexByte(ref, charC)
	row, err = strconv.Atoi(ref[1:c])
	if err != nil {
		return 0, 0, newErrorf(ErrorCodeBadCellRef, "Bad cell reference: %q", ref)
	}
	col, err = strconv.Atoi(ref[c+1:])
	if err != nil {
		return 0, 0, newErrorf(ErrorCodeBadCellRef, "Bad cell reference: %q", ref)
	}
	return row, col, nil
}

// FormatCellRef renders a one-based row and column as R<row>C<col>
func FormatCellRef(row, col int) string {
	return "R" + strconv.Itoa(row) + "C" + strconv.Itoa(col)
}
