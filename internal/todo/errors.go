package todo

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	// ErrProtected is returned when deleting the default folder.
	ErrProtected = errors.New("entity is protected")
)
