package diag

import (
	"errors"
	"fmt"
)

var (
	ErrPanic     = errors.New("phase panicked")
	ErrMalformed = errors.New("malformed group")
	ErrNesting   = errors.New("illegal variant nesting")
)

// ValidationError reports a structural problem confined to one branch of a
// document, such as illegal variant nesting.
type ValidationError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ValidationError) Error() string {
	s := "invalid"
	if e.Path != "" {
		s += " " + e.Path
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid returns a ValidationError for path wrapping err.
func Invalid(path string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Msg: fmt.Sprintf(format, args...), Err: err}
}

// ReferenceError reports a named source document that could not be found.
type ReferenceError struct {
	Name string
	Err  error
}

func (e *ReferenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no source document for %q", e.Name)
	}
	return fmt.Sprintf("no source document for %q: %v", e.Name, e.Err)
}

func (e *ReferenceError) Unwrap() error { return e.Err }

// IOError reports a failed document read or write.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsFatal reports whether err fails a phase rather than a branch of it.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	var re *ReferenceError
	return !errors.As(err, &ve) && !errors.As(err, &re)
}
