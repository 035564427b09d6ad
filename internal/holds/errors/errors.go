package errors

import "errors"

var (
	ErrNotFound = errors.New("hold not found")

	ErrExpired = errors.New("hold has expired")

	ErrLockHeld = errors.New("facility lock is held by another request")
)
