package domain

import "errors"

var (
	// ErrNotFound is returned when a mutation targets an identifier that
	// does not resolve to a stored entity.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed inputs, rejected before any
	// persistence or event side effect.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPolygon is returned when fewer than 3 coordinates are given
	// to form a polygon ring.
	ErrInvalidPolygon = errors.New("at least 3 coordinates are required to form a polygon")
)
