package model

import "errors"

// Not-found errors: the caller supplied an unknown id.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRequestNotFound = errors.New("request not found")
)

// Conflict errors: a business rule blocks the operation. The caller can
// retry with different input; the engine itself is unaffected.
var (
	ErrRoomNotAvailable        = errors.New("room is not available")
	ErrStudentAlreadyHoused    = errors.New("student already occupies a room")
	ErrDuplicatePendingRequest = errors.New("student already has a pending request")
	ErrNoActiveAssignment      = errors.New("student has no active assignment")
)

// IsNotFound checks if err belongs to the not-found class
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}

// IsConflict checks if err belongs to the business-rule conflict class
func IsConflict(err error) bool {
	return errors.Is(err, ErrRoomNotAvailable) ||
		errors.Is(err, ErrStudentAlreadyHoused) ||
		errors.Is(err, ErrDuplicatePendingRequest) ||
		errors.Is(err, ErrNoActiveAssignment)
}
