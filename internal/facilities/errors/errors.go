package errors

import "errors"

var (
	ErrNotFound = errors.New("facility not found")

	ErrInactive = errors.New("facility is not active")
)
