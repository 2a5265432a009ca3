package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	service string
	deps    map[string]Pinger
}

// NewHealthHandler: deps are pinged on every call, keyed by the name shown in the payload.
func NewHealthHandler(service string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{service: service, deps: deps}
}

type healthResp struct {
	Service      string            `json:"service"`
	Status       string            `json:"status"`
	Time         string            `json:"time"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health answers 503 "degraded" when any dependency fails its ping.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResp{Service: h.service, Status: "ok"}
	code := http.StatusOK
	if len(names) > 0 {
		resp.Dependencies = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := h.deps[name](ctx); err != nil {
			c.Logger().Warnf("health: %s: %v", name, err)
			resp.Dependencies[name] = "down"
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Dependencies[name] = "up"
	}
	resp.Time = time.Now().UTC().Format(time.RFC3339Nano)
	return c.JSON(code, resp)
}
