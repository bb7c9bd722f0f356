package docio

import "errors"

var (
	ErrBadDocument = errors.New("bad document")
	ErrBadPatch    = errors.New("bad patch")
)
