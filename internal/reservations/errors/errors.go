package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrOverlap is returned when the store itself rejects intersecting stays.
	ErrOverlap = errors.New("reservation overlaps an existing one")

	ErrRoomMissing = errors.New("referenced room does not exist")
)
