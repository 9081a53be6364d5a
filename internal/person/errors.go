package person

import "errors"

var (
	ErrDuplicateCitizenID = errors.New("citizen id already registered")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrMissingField       = errors.New("missing required field")
)
