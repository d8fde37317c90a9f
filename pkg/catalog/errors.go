package catalog

import "errors"

var (
	// ErrIdeaNotFound is returned when no idea with the requested ID exists.
	ErrIdeaNotFound = errors.New("idea not found")
	// ErrInvalidDataset is returned when the idea dataset cannot be loaded
	// or fails validation.
	ErrInvalidDataset = errors.New("invalid idea dataset")
)
