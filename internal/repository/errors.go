package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateCase is returned when a tracking record already exists
	// for the case id.
	ErrDuplicateCase = errors.New("tracking record already exists")
)
