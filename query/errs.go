package query

import "errors"

var (
	ErrBadQuery = errors.New("bad query")
	ErrEval     = errors.New("query evaluation failed")
)
