package leave

import "errors"

var (
	ErrNotFound                = errors.New("leave request not found")
	ErrInvalidDateRange        = errors.New("start date must not be after end date")
	ErrPastStartDate           = errors.New("start date is in the past")
	ErrLeaveTypeInactive       = errors.New("leave type is inactive")
	ErrGenderMismatch          = errors.New("leave type is not applicable to the requester's gender")
	ErrHalfDayNotAllowed       = errors.New("leave type does not allow half-day requests")
	ErrHalfDayMultiDay         = errors.New("half-day request must start and end on the same day")
	ErrNoWorkingDays           = errors.New("requested range contains no working days")
	ErrOverlappingRequest      = errors.New("overlapping leave request exists")
	ErrAlreadyInStatus         = errors.New("leave request is already in the requested status")
	ErrInvalidStatusTransition = errors.New("invalid leave request status transition")
	ErrUnauthorized            = errors.New("actor is not authorized for this leave request")
	ErrCannotCancelStarted     = errors.New("approved leave that has already started cannot be cancelled")
	ErrInvalidRequestType      = errors.New("invalid leave request type")
)
