package auth

import "errors"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrForbidden    = errors.New("role not allowed")
)
