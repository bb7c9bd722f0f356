package usda

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	TEOF TokenType = iota
	TIdent
	TNumber
	TString
	TAsset
	TPath
	TLParen
	TRParen
	TLCurl
	TRCurl
	TLSquare
	TRSquare
	TEquals
	TComma
	TColon
	TSemicolon
)

func (t TokenType) String() string {
	return map[TokenType]string{
		TEOF:       "TEOF",
		TIdent:     "TIdent",
		TNumber:    "TNumber",
		TString:    "TString",
		TAsset:     "TAsset",
		TPath:      "TPath",
		TLParen:    "TLParen",
		TRParen:    "TRParen",
		TLCurl:     "TLCurl",
		TRCurl:     "TRCurl",
		TLSquare:   "TLSquare",
		TRSquare:   "TRSquare",
		TEquals:    "TEquals",
		TComma:     "TComma",
		TColon:     "TColon",
		TSemicolon: "TSemicolon",
	}[t]
}

// Token is a lexical unit. Text holds the decoded content for strings,
// assets and paths, and the source text otherwise.
type Token struct {
	Type TokenType
	Pos  Pos
	Text string
}

func (t *Token) String() string {
	if t.Type == TEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q at %s", t.Type, t.Text, t.Pos)
}

func (t *Token) is(tt TokenType, text string) bool {
	return t.Type == tt && t.Text == text
}

type tokenizer struct {
	src  []byte
	i    int
	line int
	col  int
	toks []Token
}

// Tokenize splits a text layer into tokens. The #usda header line must come
// first; it is checked and dropped.
func Tokenize(src []byte) ([]Token, error) {
	if !strings.HasPrefix(string(src), "#usda ") {
		return nil, &SyntaxError{Pos: Pos{1, 1}, Err: ErrBadHeader}
	}
	t := &tokenizer{src: src, line: 1, col: 1}
	t.skipLine()
	for {
		t.skipSpace()
		if t.i >= len(t.src) {
			t.toks = append(t.toks, Token{Type: TEOF, Pos: t.pos()})
			return t.toks, nil
		}
		if err := t.next(); err != nil {
			return nil, err
		}
	}
}

func (t *tokenizer) pos() Pos { return Pos{Line: t.line, Col: t.col} }

func (t *tokenizer) advance(n int) {
	for range n {
		if t.src[t.i] == '\n' {
			t.line++
			t.col = 1
		} else {
			t.col++
		}
		t.i++
	}
}

func (t *tokenizer) skipLine() {
	for t.i < len(t.src) && t.src[t.i] != '\n' {
		t.advance(1)
	}
}

func (t *tokenizer) skipSpace() {
	for t.i < len(t.src) {
		switch t.src[t.i] {
		case ' ', '\t', '\r', '\n':
			t.advance(1)
		case '#':
			t.skipLine()
		default:
			return
		}
	}
}

func (t *tokenizer) emit(tt TokenType, p Pos, text string) {
	t.toks = append(t.toks, Token{Type: tt, Pos: p, Text: text})
}

func (t *tokenizer) errf(p Pos, format string, args ...any) error {
	return &SyntaxError{Pos: p, Err: fmt.Errorf("%w: "+format, append([]any{ErrSyntax}, args...)...)}
}

var punct = map[byte]TokenType{
	'(': TLParen,
	')': TRParen,
	'{': TLCurl,
	'}': TRCurl,
	'[': TLSquare,
	']': TRSquare,
	'=': TEquals,
	',': TComma,
	':': TColon,
	';': TSemicolon,
}

func (t *tokenizer) next() error {
	p := t.pos()
	c := t.src[t.i]
	if tt, ok := punct[c]; ok {
		t.emit(tt, p, string(c))
		t.advance(1)
		return nil
	}
	switch {
	case c == '"' || c == '\'':
		s, err := t.quoted()
		if err != nil {
			return err
		}
		t.emit(TString, p, s)
		return nil
	case c == '@':
		return t.delimited(p, TAsset, '@')
	case c == '<':
		return t.delimited(p, TPath, '>')
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return t.number(p)
	case isIdentStart(c):
		j := t.i
		for j < len(t.src) && isIdentChar(t.src[j]) {
			j++
		}
		t.emit(TIdent, p, string(t.src[t.i:j]))
		t.advance(j - t.i)
		return nil
	}
	return t.errf(p, "unexpected character %q", c)
}

func (t *tokenizer) delimited(p Pos, tt TokenType, end byte) error {
	start := t.i + 1
	j := start
	for j < len(t.src) && t.src[j] != end && t.src[j] != '\n' {
		j++
	}
	if j >= len(t.src) || t.src[j] != end {
		return t.errf(p, "unterminated %s", tt)
	}
	t.emit(tt, p, string(t.src[start:j]))
	t.advance(j + 1 - t.i)
	return nil
}

func (t *tokenizer) number(p Pos) error {
	j := t.i
	if t.src[j] == '-' || t.src[j] == '+' {
		j++
	}
	// inf and nan
	if j < len(t.src) && isIdentStart(t.src[j]) {
		k := j
		for k < len(t.src) && isIdentChar(t.src[k]) {
			k++
		}
		w := string(t.src[j:k])
		if w != "inf" && w != "nan" {
			return t.errf(p, "bad number %q", string(t.src[t.i:k]))
		}
		t.emit(TNumber, p, string(t.src[t.i:k]))
		t.advance(k - t.i)
		return nil
	}
	digits := 0
scan:
	for j < len(t.src) {
		c := t.src[j]
		switch {
		case isDigit(c):
			digits++
		case c == '.':
		case c == 'e' || c == 'E':
			if j+1 < len(t.src) && (t.src[j+1] == '-' || t.src[j+1] == '+') {
				j++
			}
		default:
			break scan
		}
		j++
	}
	if digits == 0 {
		return t.errf(p, "bad number %q", string(t.src[t.i:j]))
	}
	t.emit(TNumber, p, string(t.src[t.i:j]))
	t.advance(j - t.i)
	return nil
}

func (t *tokenizer) quoted() (string, error) {
	p := t.pos()
	q := t.src[t.i]
	triple := t.i+2 < len(t.src) && t.src[t.i+1] == q && t.src[t.i+2] == q
	if triple {
		t.advance(3)
	} else {
		t.advance(1)
	}
	var b strings.Builder
	for t.i < len(t.src) {
		c := t.src[t.i]
		switch {
		case c == q && !triple:
			t.advance(1)
			return b.String(), nil
		case c == q && t.i+2 < len(t.src) && t.src[t.i+1] == q && t.src[t.i+2] == q:
			t.advance(3)
			return b.String(), nil
		case c == '\n' && !triple:
			return "", t.errf(p, "newline in string")
		case c == '\\' && t.i+1 < len(t.src):
			b.WriteByte(unescape(t.src[t.i+1]))
			t.advance(2)
		default:
			b.WriteByte(c)
			t.advance(1)
		}
	}
	return "", t.errf(p, "unterminated string")
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == ':' || c == '.'
}
