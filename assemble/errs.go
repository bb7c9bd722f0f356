package assemble

import "errors"

var (
	// ErrAmbiguous is reported for a purpose bucket holding several members
	// none of which selects a variant.
	ErrAmbiguous = errors.New("ambiguous purpose bucket")
	ErrNameClash = errors.New("name clash")
)
