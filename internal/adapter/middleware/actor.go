package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"microfin-backend/internal/domain/staff"
)

// The upstream auth subsystem authenticates callers and forwards the
// verified actor in these headers; the core trusts them and performs no
// credential checks of its own.
const (
	HeaderActorID     = "Ax-Actor-Id"
	HeaderActorRole   = "Ax-Actor-Role"
	HeaderActorRegion = "Ax-Actor-Region"
)

const actorContextKey = "microfin.actor"

// ActorContext resolves the verified actor from the forwarded headers and
// stashes it on the request context. Requests without a well-formed actor
// are rejected before any handler runs.
func ActorContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actorID := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			if actorID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderActorID})
			}
			role, err := staff.ParseRole(strings.TrimSpace(c.Request().Header.Get(HeaderActorRole)))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid " + HeaderActorRole})
			}
			c.Set(actorContextKey, staff.Actor{
				ID:     actorID,
				Role:   role,
				Region: strings.TrimSpace(c.Request().Header.Get(HeaderActorRegion)),
			})
			return next(c)
		}
	}
}

// ActorFrom returns the actor stashed by ActorContext.
func ActorFrom(c echo.Context) (staff.Actor, bool) {
	a, ok := c.Get(actorContextKey).(staff.Actor)
	return a, ok
}
