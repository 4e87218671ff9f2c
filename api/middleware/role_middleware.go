package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole admits callers whose token role is one of roles. It trusts the
// claim; services that need the stored role look the caller up themselves.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFromContext(c)
			if !ok || !slices.Contains(roles, identity.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "you do not have permission for this operation")
			}
			return next(c)
		}
	}
}
