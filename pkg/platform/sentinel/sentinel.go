package sentinel

import "errors"

// Sentinel errors for storage facts. The in-memory stores return these
// (optionally wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: no event with the requested id
//   - ErrConflict: an event with the same id already exists
//   - ErrInvalidState: the mutation produced data the store refuses to keep
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
