package config

import "errors"

var (
	ErrInvalid = errors.New("invalid config")
	ErrLoad    = errors.New("cannot load config")
)
