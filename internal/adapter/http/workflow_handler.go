package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"leaveflow/internal/adapter/middleware"
	"leaveflow/internal/domain/user"
	domainWorkflow "leaveflow/internal/domain/workflow"
	"leaveflow/internal/usecase/workflow"
)

type WorkflowHandler struct{ uc *workflow.Usecase }

func NewWorkflowHandler(uc *workflow.Usecase) *WorkflowHandler { return &WorkflowHandler{uc: uc} }

type levelReq struct {
	Level        int      `json:"level" validate:"required,gte=1"`
	ApproverType string   `json:"approver_type" validate:"required"`
	Roles        []string `json:"roles" validate:"required,min=1"`
}

type workflowReq struct {
	Name     string     `json:"name" validate:"required,max=100"`
	MinDays  string     `json:"min_days" validate:"required,halfstep"`
	MaxDays  string     `json:"max_days" validate:"required,halfstep"`
	Levels   []levelReq `json:"levels" validate:"required,min=1,dive"`
	IsActive *bool      `json:"is_active"`
}

type activeReq struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// toInput runs after validation, so both day counts parse.
func (r workflowReq) toInput() workflow.WorkflowInput {
	levels := make([]domainWorkflow.ApprovalLevel, 0, len(r.Levels))
	for _, l := range r.Levels {
		roles := make([]user.Role, 0, len(l.Roles))
		for _, role := range l.Roles {
			roles = append(roles, user.Role(role))
		}
		levels = append(levels, domainWorkflow.ApprovalLevel{
			Level:        l.Level,
			ApproverType: domainWorkflow.ApproverType(l.ApproverType),
			Roles:        roles,
		})
	}
	return workflow.WorkflowInput{
		Name:     r.Name,
		MinDays:  decimal.RequireFromString(r.MinDays),
		MaxDays:  decimal.RequireFromString(r.MaxDays),
		Levels:   levels,
		IsActive: r.IsActive,
	}
}

func (h *WorkflowHandler) Select(c echo.Context) error {
	days, err := decimal.NewFromString(c.QueryParam("days"))
	if err != nil || !days.IsPositive() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "days must be a positive number"})
	}
	w, err := h.uc.SelectWorkflow(c.Request().Context(), days)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WorkflowHandler) Create(c echo.Context) error {
	var req workflowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	w, err := h.uc.CreateWorkflow(c.Request().Context(), middleware.ActorID(c), req.toInput())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *WorkflowHandler) Update(c echo.Context) error {
	var req workflowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	w, err := h.uc.UpdateWorkflow(c.Request().Context(), middleware.ActorID(c), c.Param("id"), req.toInput())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WorkflowHandler) SetActive(c echo.Context) error {
	var req activeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	w, err := h.uc.SetWorkflowActive(c.Request().Context(), middleware.ActorID(c), c.Param("id"), *req.IsActive)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, w)
}
