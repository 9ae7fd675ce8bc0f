package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when an entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with a unique entity.
	ErrConflict = errors.New("conflict")
	// ErrInUse is returned when an entity is still referenced.
	ErrInUse = errors.New("in use")
)
