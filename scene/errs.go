package scene

import (
	"errors"
	"fmt"
)

var (
	ErrBadPath      = errors.New("bad path")
	ErrBadName      = errors.New("bad name")
	ErrNotFound     = errors.New("not found")
	ErrExists       = errors.New("already exists")
	ErrMoveConflict = errors.New("move conflict")
)

// MoveError reports which move of a batch made the batch fail.
type MoveError struct {
	Index int
	Move  Move
	Err   error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %d %s -> %s: %v", e.Index, e.Move.From, e.Move.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
