package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"leaveflow/internal/adapter/middleware"
	domainLeave "leaveflow/internal/domain/leave"
	"leaveflow/internal/usecase/leave"
)

type LeaveHandler struct{ uc *leave.Usecase }

func NewLeaveHandler(uc *leave.Usecase) *LeaveHandler { return &LeaveHandler{uc: uc} }

type createLeaveReq struct {
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,isodate"`
	EndDate     string `json:"end_date" validate:"required,isodate"`
	RequestType string `json:"request_type" validate:"omitempty,reqtype"`
	Reason      string `json:"reason" validate:"max=2000"`
}

type updateStatusReq struct {
	Status   string `json:"status" validate:"required,oneof=approved rejected cancelled"`
	Comments string `json:"comments" validate:"max=2000"`
}

func (h *LeaveHandler) Create(c echo.Context) error {
	var req createLeaveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	out, err := h.uc.Create(c.Request().Context(), leave.CreateInput{
		ActorID:     middleware.ActorID(c),
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   parseDay(req.StartDate),
		EndDate:     parseDay(req.EndDate),
		RequestType: domainLeave.RequestType(req.RequestType),
		Reason:      strings.TrimSpace(req.Reason),
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *LeaveHandler) Get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LeaveHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	out, err := h.uc.UpdateStatus(c.Request().Context(), leave.UpdateStatusInput{
		RequestID:    c.Param("id"),
		ActorID:      middleware.ActorID(c),
		TargetStatus: domainLeave.Status(req.Status),
		Comments:     strings.TrimSpace(req.Comments),
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LeaveHandler) Cancel(c echo.Context) error {
	out, err := h.uc.Cancel(c.Request().Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
