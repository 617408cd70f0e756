package lexer

import "fmt"

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Number
	Identifier
	Keyword
	Break
	Plus
	Minus
	Star
	Slash
	Percent
	LParen
	RParen
	LBrace
	RBrace
	Eq
	EqualEqual
	BangEqual
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual
)

var kindNames = [...]string{
	EOF:          "EOF",
	Number:       "NUMBER",
	Identifier:   "IDENTIFIER",
	Keyword:      "KEYWORD",
	Break:        "BREAK",
	Plus:         "PLUS",
	Minus:        "MINUS",
	Star:         "STAR",
	Slash:        "SLASH",
	Percent:      "PERCENT",
	LParen:       "LPAREN",
	RParen:       "RPAREN",
	LBrace:       "LBRACE",
	RBrace:       "RBRACE",
	Eq:           "EQ",
	EqualEqual:   "EQUAL_EQUAL",
	BangEqual:    "BANG_EQUAL",
	LessThan:     "LESS_THAN",
	LessEqual:    "LESS_EQUAL",
	GreaterThan:  "GREATER_THAN",
	GreaterEqual: "GREATER_EQUAL",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsComparison reports whether k is one of the six comparison operators.
func (k Kind) IsComparison() bool {
	switch k {
	case EqualEqual, BangEqual, LessThan, LessEqual, GreaterThan, GreaterEqual:
		return true
	default:
		return false
	}
}

// Keywords lexed as KEYWORD. `break` has its own kind and `print` is a
// plain identifier.
var keywords = map[string]struct{}{
	"var":   {},
	"while": {},
	"if":    {},
}

// Pos is a location in source text. Line and Column are 1-based.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is an immutable (kind, text) pair plus its source position.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// Is reports whether the token has the given kind and literal text.
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}
