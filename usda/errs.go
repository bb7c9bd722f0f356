package usda

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax      = errors.New("syntax error")
	ErrBadHeader   = errors.New("missing #usda header")
	ErrUnsupported = errors.New("unsupported construct")
)

type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// SyntaxError locates a parse failure.
type SyntaxError struct {
	File string
	Pos  Pos
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%s: %v", e.File, e.Pos, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func expectedErr(what string, t *Token) error {
	return &SyntaxError{Pos: t.Pos, Err: fmt.Errorf("%w: expected %s, got %s", ErrSyntax, what, t)}
}

func unexpectedErr(t *Token) error {
	return &SyntaxError{Pos: t.Pos, Err: fmt.Errorf("%w: unexpected %s", ErrSyntax, t)}
}
