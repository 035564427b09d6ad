package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusConflict means a compare-and-set transition matched no
	// document: the booking exists but its status is not in the expected
	// set. The service layer re-reads to produce a specific guard error.
	ErrStatusConflict = errors.New("booking status does not permit this transition")
)
