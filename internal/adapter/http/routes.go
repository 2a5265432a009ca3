package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health   *HealthHandler
	Leave    *LeaveHandler
	Balance  *BalanceHandler
	Workflow *WorkflowHandler
}

// Register mounts every route. mw wraps all routes except /health.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	api := e.Group("", mw...)

	api.POST("/leave-requests", h.Leave.Create)
	api.GET("/leave-requests/:id", h.Leave.Get)
	api.PATCH("/leave-requests/:id/status", h.Leave.UpdateStatus)
	api.POST("/leave-requests/:id/cancel", h.Leave.Cancel)

	api.GET("/balances/:user_id/:leave_type_id", h.Balance.Available)
	api.POST("/balances/provision", h.Balance.Provision)
	api.POST("/balances/roll-forward", h.Balance.RollForward)

	api.GET("/workflows/select", h.Workflow.Select)
	api.POST("/workflows", h.Workflow.Create)
	api.PUT("/workflows/:id", h.Workflow.Update)
	api.PATCH("/workflows/:id/active", h.Workflow.SetActive)
}
