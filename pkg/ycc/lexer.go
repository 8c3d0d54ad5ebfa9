package ycc

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Kind is the lexical category of a Tok.
type Kind int

const (
	Keyword Kind = iota
	Identifier
	Literal
	Bracket
	Operator
)

func (k Kind) String() string {
	switch k {
	case Keyword:
		return "keyword"
	case Identifier:
		return "identifier"
	case Literal:
		return "literal"
	case Bracket:
		return "bracket"
	case Operator:
		return "operator"
	default:
		return "unknown token kind"
	}
}

var keywords = []string{
	"if", "while", "for", "def", "return", "struct", "extends", "else", "foreach",
}

// operators are ordered so that a longer spelling is tried before any
// of its prefixes.
var operators = []string{
	"==", "!=", "<=", ">=", "&&", "||",
	"+", "-", "*", "/", "=", ".", "<", ">", "&",
	"arr", "let",
}

var brackets = []string{"(", ")", "{", "}", "[", "]", ",", ";", ":"}

// precedences of operators, higher binds tighter. "[" is not an operator
// token but subscripting reduces against this table.
var precedences = map[string]int{
	"=":   10,
	"||":  20,
	"&&":  30,
	"==":  40,
	"!=":  40,
	"<=":  50,
	">=":  50,
	"<":   50,
	">":   50,
	"+":   60,
	"-":   60,
	"*":   70,
	"/":   70,
	"&":   80,
	"arr": 80,
	"let": 80,
	".":   90,
	"[":   90,
}

type position struct {
	file      string
	line, col int
}

func (p position) String() string {
	if p.file == "" {
		return fmt.Sprintf("%d:%d", p.line, p.col)
	}
	return fmt.Sprintf("%s:%d:%d", p.file, p.line, p.col)
}

// Tok is a single lexical token. Literal tokens hold their raw source
// text; interpretation as a Value is deferred to parseConstant.
type Tok struct {
	kind Kind
	text string
	position
}

func (t Tok) Kind() Kind {
	return t.kind
}

func (t Tok) Text() string {
	return t.text
}

func (t Tok) String() string {
	return fmt.Sprintf("%s '%s' [%s]", t.kind, t.text, t.position)
}

func (t Tok) is(kind Kind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t Tok) precedence() int {
	if p, ok := precedences[t.text]; ok {
		return p
	}
	return -1
}

func isUnaryOp(text string) bool {
	switch text {
	case "&", "arr", "let":
		return true
	default:
		return false
	}
}

func isWordChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}

// Tokenize converts a block of source text into its token sequence.
// file names the block in diagnostics.
func Tokenize(file, source string, debugLexer bool) ([]Tok, error) {
	src := []rune(source)
	tokens := make([]Tok, 0, len(src)/3)
	line, col := 1, 1
	i := 0

	advance := func(n int) {
		for ; n > 0; n-- {
			if src[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
		}
	}

	// hasWord reports whether src at i spells w, requiring a word
	// boundary after w when w ends in a letter
	hasWord := func(w string) bool {
		rw := []rune(w)
		if i+len(rw) > len(src) {
			return false
		}
		for j, c := range rw {
			if src[i+j] != c {
				return false
			}
		}
		if unicode.IsLetter(rw[len(rw)-1]) && i+len(rw) < len(src) && isWordChar(src[i+len(rw)]) {
			return false
		}
		return true
	}

	emit := func(kind Kind, width int) {
		tok := Tok{
			kind:     kind,
			text:     string(src[i : i+width]),
			position: position{file, line, col},
		}
		if debugLexer {
			LogDebug("lex ->", tok.String())
		}
		tokens = append(tokens, tok)
		advance(width)
	}

	matchAny := func(words []string) (string, bool) {
		for _, w := range words {
			if hasWord(w) {
				return w, true
			}
		}
		return "", false
	}

	for i < len(src) {
		c := src[i]
		if unicode.IsSpace(c) {
			advance(1)
			continue
		}

		if w, ok := matchAny(keywords); ok {
			emit(Keyword, len([]rune(w)))
			continue
		}
		if w, ok := matchAny(operators); ok {
			emit(Operator, len([]rune(w)))
			continue
		}
		if w, ok := matchAny(brackets); ok {
			emit(Bracket, len([]rune(w)))
			continue
		}

		switch {
		case unicode.IsLetter(c):
			j := i
			for j < len(src) && isWordChar(src[j]) {
				j++
			}
			switch string(src[i:j]) {
			case "true", "false":
				emit(Literal, j-i)
			default:
				emit(Identifier, j-i)
			}
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) {
				return nil, errorf(ErrLex, "unterminated string literal [%s]",
					position{file, line, col})
			}
			emit(Literal, j+1-i)
		case unicode.IsDigit(c):
			j := i
			for j < len(src) {
				d := src[j]
				if isWordChar(d) || d == '.' {
					j++
				} else if d == '-' && j > i && (src[j-1] == 'e' || src[j-1] == 'E') {
					j++
				} else {
					break
				}
			}
			emit(Literal, j-i)
		default:
			return nil, errorf(ErrLex, "unexpected character %q [%s]",
				c, position{file, line, col})
		}
	}

	return tokens, nil
}

// parseConstant interprets a Literal token: a quoted string, or else
// bool, then integer, then float, defaulting to the zero Value.
func parseConstant(tok Tok) Value {
	s := tok.text
	if strings.HasPrefix(s, `"`) {
		return StringValue(unescape(s[1 : len(s)-1]))
	}
	switch strings.ToLower(s) {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f)
	}
	return zeroValue
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
