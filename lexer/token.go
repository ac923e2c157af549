package lexer

import (
	"fmt"
	"strings"
)

// Kind is the type of a token inside an output or tag chunk.
type Kind int

const (
	UNKNOWN Kind = iota
	STRING
	VAR
	NUMBER
	BOOL
	PARENOPEN
	PARENCLOSE
	BRACKETOPEN
	BRACKETCLOSE
	COMMA
	COLON
	FILTER
	OPERATOR
	COMPARATOR
	LOGIC
	NOT
)

// Token is a lexical unit of a tag or output chunk.
type Token struct {
	Kind  Kind
	Match string
	Line  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", KindName(t.Kind), t.Match)
}

// KindName returns a human-readable form of a token kind, used in error
// messages.
func KindName(k Kind) string {
	switch k {
	case STRING:
		return "string"
	case VAR:
		return "variable"
	case NUMBER:
		return "number"
	case BOOL:
		return "boolean"
	case PARENOPEN:
		return "'('"
	case PARENCLOSE:
		return "')'"
	case BRACKETOPEN:
		return "'['"
	case BRACKETCLOSE:
		return "']'"
	case COMMA:
		return "','"
	case COLON:
		return "':'"
	case FILTER:
		return "filter"
	case OPERATOR:
		return "operator"
	case COMPARATOR:
		return "comparator"
	case LOGIC:
		return "logic operator"
	case NOT:
		return "'not'"
	}
	return "token"
}

var comparators = []string{"===", "!==", "==", "!=", "<=", ">=", "<", ">"}

// Tokenize splits the body of an output or tag chunk into tokens. line is
// the 1-based line the body starts on.
func Tokenize(src string, line int) ([]Token, error) {
	var tokens []Token
	i := 0
	emit := func(k Kind, n int) {
		tokens = append(tokens, Token{Kind: k, Match: src[i : i+n], Line: line})
		i += n
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '"' || c == '\'':
			n, err := scanString(src[i:])
			if err != nil {
				return nil, &Error{Line: line, Msg: err.Error()}
			}
			start := line
			line += strings.Count(src[i:i+n], "\n")
			tokens = append(tokens, Token{Kind: STRING, Match: src[i : i+n], Line: start})
			i += n
		case isDigit(c):
			emit(NUMBER, scanNumber(src[i:]))
		case isIdentStart(c):
			n := scanVar(src[i:])
			switch word := src[i : i+n]; word {
			case "true", "false":
				emit(BOOL, n)
			case "and", "or":
				emit(LOGIC, n)
			case "not":
				emit(NOT, n)
			default:
				emit(VAR, n)
			}
		case c == '(':
			emit(PARENOPEN, 1)
		case c == ')':
			emit(PARENCLOSE, 1)
		case c == '[':
			emit(BRACKETOPEN, 1)
		case c == ']':
			emit(BRACKETCLOSE, 1)
		case c == ',':
			emit(COMMA, 1)
		case c == ':':
			emit(COLON, 1)
		case strings.HasPrefix(src[i:], "||"), strings.HasPrefix(src[i:], "&&"):
			emit(LOGIC, 2)
		case c == '|':
			emit(FILTER, 1)
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '%':
			emit(OPERATOR, 1)
		default:
			if n := matchComparator(src[i:]); n > 0 {
				emit(COMPARATOR, n)
				continue
			}
			if c == '!' {
				emit(NOT, 1)
				continue
			}
			emit(UNKNOWN, 1)
		}
	}
	return tokens, nil
}

func scanString(s string) (int, error) {
	quote := s[0]
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated string %s", s)
}

// Unquote returns the contents of a STRING token match with its quotes
// removed and backslash escapes resolved. \n, \t and \r stand for control
// characters; any other escaped character stands for itself.
func Unquote(s string) (string, error) {
	if len(s) < 2 || (s[0] != '"' && s[0] != '\'') || s[len(s)-1] != s[0] {
		return "", fmt.Errorf("invalid string %s", s)
	}
	body := s[1 : len(s)-1]
	if !strings.Contains(body, "\\") {
		return body, nil
	}

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(body) {
			return "", fmt.Errorf("invalid string %s", s)
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String(), nil
}

func scanNumber(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return i
}

// scanVar reads a dotted identifier such as "forms.input".
func scanVar(s string) int {
	i := 0
	for i < len(s) {
		if isIdent(s[i]) {
			i++
			continue
		}
		if s[i] == '.' && i+1 < len(s) && isIdentStart(s[i+1]) {
			i++
			continue
		}
		break
	}
	return i
}

func matchComparator(s string) int {
	for _, c := range comparators {
		if strings.HasPrefix(s, c) {
			return len(c)
		}
	}
	return 0
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isIdentStart(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || b == '_' || b == '$'
}

func isIdent(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}
