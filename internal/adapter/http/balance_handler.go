package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"leaveflow/internal/adapter/middleware"
	"leaveflow/internal/usecase/balance"
)

type BalanceHandler struct{ uc *balance.Usecase }

func NewBalanceHandler(uc *balance.Usecase) *BalanceHandler { return &BalanceHandler{uc: uc} }

type provisionReq struct {
	LeaveTypeID   string `json:"leave_type_id" validate:"required"`
	Year          int    `json:"year" validate:"required,gte=2000,lte=2100"`
	ResetExisting bool   `json:"reset_existing"`
}

type rollForwardReq struct {
	UserID      string `json:"user_id" validate:"required"`
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	Year        int    `json:"year" validate:"required,gte=2000,lte=2100"`
}

type availableResp struct {
	UserID      string          `json:"user_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Year        int             `json:"year"`
	Available   decimal.Decimal `json:"available"`
}

// Available defaults ?year= to the current UTC year.
func (h *BalanceHandler) Available(c echo.Context) error {
	year := time.Now().UTC().Year()
	if raw := c.QueryParam("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 2100 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid year"})
		}
		year = y
	}
	userID, leaveTypeID := c.Param("user_id"), c.Param("leave_type_id")
	avail, err := h.uc.GetAvailableBalance(c.Request().Context(), userID, leaveTypeID, year)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, availableResp{UserID: userID, LeaveTypeID: leaveTypeID, Year: year, Available: avail})
}

func (h *BalanceHandler) Provision(c echo.Context) error {
	var req provisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.uc.BulkProvisionBalances(c.Request().Context(), middleware.ActorID(c), req.LeaveTypeID, req.Year, req.ResetExisting)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *BalanceHandler) RollForward(c echo.Context) error {
	var req rollForwardReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	b, err := h.uc.RollForward(c.Request().Context(), middleware.ActorID(c), req.UserID, req.LeaveTypeID, req.Year)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
