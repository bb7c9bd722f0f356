package nsedit

import "errors"

var (
	ErrNoWrapper  = errors.New("no wrapper")
	ErrIncomplete = errors.New("relocation incomplete")
)
