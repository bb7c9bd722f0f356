package assets

import "errors"

var (
	ErrNotDir     = errors.New("not a directory")
	ErrBadPattern = errors.New("bad ignore pattern")
	ErrNotFound   = errors.New("no document")
)
