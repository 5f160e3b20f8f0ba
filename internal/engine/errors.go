package engine

import "errors"

var (
	// ErrNotFound covers absent storylines, nodes, choices, and characters.
	ErrNotFound = errors.New("not found")

	// ErrStorage wraps persistent-store I/O failures.
	ErrStorage = errors.New("storage failure")
)
