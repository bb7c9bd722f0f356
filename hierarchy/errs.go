package hierarchy

import "errors"

var (
	ErrUndeclaredParent = errors.New("undeclared parent")
	ErrBadLine          = errors.New("bad hierarchy line")
	ErrCycle            = errors.New("hierarchy cycle")
)
