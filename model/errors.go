package model

import "errors"

var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidValue  = errors.New("invalid value")
	ErrDuplicateName = errors.New("a cafe with this name already exists")
	ErrNotFound      = errors.New("cafe not found")
	ErrAccessDenied  = errors.New("access denied")
)
