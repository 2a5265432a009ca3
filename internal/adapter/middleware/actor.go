package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"leaveflow/pkg/id"
)

const (
	HeaderActorID = "X-Actor-Id"
	actorKey      = "actor_id"
)

// RequireActor rejects requests without an authenticated actor id and
// stores the id on the echo context for handlers and later middleware.
func RequireActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			if actor == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderActorID})
			}
			if !id.Valid(actor) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderActorID})
			}
			c.Set(actorKey, strings.ToLower(actor))
			return next(c)
		}
	}
}

// ActorID returns the id set by RequireActor, falling back to the raw header
// when the middleware is not mounted.
func ActorID(c echo.Context) string {
	if v, ok := c.Get(actorKey).(string); ok && v != "" {
		return v
	}
	return strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
}
