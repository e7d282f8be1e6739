package models

import "errors"

// Typed failures returned by the stores and controllers. Callers match them
// with errors.Is; the HTTP layer maps them to response codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyTracked   = errors.New("already tracked")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrValidationFailed = errors.New("validation failed")
)
