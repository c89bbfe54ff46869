package domain

import "errors"

var (
	ErrNoProducts    = errors.New("no products generated")
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrInvalidOutput = errors.New("model output does not match the schema")
	ErrMissingConfig = errors.New("missing required configuration")
	ErrNotFound      = errors.New("not found")
)
