package store

import "errors"

// Sentinel errors returned by store operations. Callers translate these into
// domain errors at the service layer.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
)
