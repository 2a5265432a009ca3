package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domainBalance "leaveflow/internal/domain/balance"
	domainLeave "leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/leavetype"
	"leaveflow/internal/domain/user"
	domainWorkflow "leaveflow/internal/domain/workflow"
)

var statusTable = []struct {
	err  error
	code int
}{
	{domainLeave.ErrNotFound, http.StatusNotFound},
	{leavetype.ErrNotFound, http.StatusNotFound},
	{user.ErrNotFound, http.StatusNotFound},
	{domainWorkflow.ErrNotFound, http.StatusNotFound},
	{domainBalance.ErrNotFound, http.StatusNotFound},

	{domainLeave.ErrInvalidDateRange, http.StatusBadRequest},
	{domainLeave.ErrPastStartDate, http.StatusBadRequest},
	{domainLeave.ErrLeaveTypeInactive, http.StatusBadRequest},
	{domainLeave.ErrGenderMismatch, http.StatusBadRequest},
	{domainLeave.ErrHalfDayNotAllowed, http.StatusBadRequest},
	{domainLeave.ErrHalfDayMultiDay, http.StatusBadRequest},
	{domainLeave.ErrNoWorkingDays, http.StatusBadRequest},
	{domainLeave.ErrInvalidRequestType, http.StatusBadRequest},
	{domainWorkflow.ErrInvalid, http.StatusBadRequest},

	{domainLeave.ErrOverlappingRequest, http.StatusConflict},
	{domainLeave.ErrAlreadyInStatus, http.StatusConflict},
	{domainLeave.ErrInvalidStatusTransition, http.StatusConflict},
	{domainLeave.ErrCannotCancelStarted, http.StatusConflict},
	{domainWorkflow.ErrOverlap, http.StatusConflict},
	{domainWorkflow.ErrDuplicateName, http.StatusConflict},

	{domainBalance.ErrInsufficientBalance, http.StatusUnprocessableEntity},
	{domainLeave.ErrUnauthorized, http.StatusForbidden},
	{domainWorkflow.ErrConfiguration, http.StatusInternalServerError},
}

func statusFor(err error) int {
	for _, s := range statusTable {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return http.StatusInternalServerError
}

// errorJSON hides the message of unclassified errors.
func errorJSON(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError && !errors.Is(err, domainWorkflow.ErrConfiguration) {
		c.Logger().Error(err)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}
