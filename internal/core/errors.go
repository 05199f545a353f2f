package core

import "errors"

// Error kinds returned by the engine. Callers classify failures with
// errors.Is; the HTTP adapter maps them to response codes.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
)
