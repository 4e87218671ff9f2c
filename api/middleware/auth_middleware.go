package middleware

import (
	"net/http"
	"strings"

	"github.com/Aykachasanli/pascale-backend-server/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthMiddleware struct {
	JWT *utils.JWTManager
}

func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c.Request())
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing session token")
		}
		if err := m.authenticate(c, token); err != nil {
			return err
		}
		return next(c)
	}
}

// OptionalAuth resolves the caller when a token is present and lets
// anonymous requests through untouched. A malformed token is still rejected.
func (m AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c.Request())
		if token == "" {
			return next(c)
		}
		if err := m.authenticate(c, token); err != nil {
			return err
		}
		return next(c)
	}
}

func (m AuthMiddleware) authenticate(c echo.Context, token string) error {
	if m.JWT == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	claims, err := m.JWT.ParseSessionToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}
	SetAuthContext(c, userID, claims.Role)
	return nil
}

// extractToken accepts "Bearer <token>" as well as a bare token, which older
// clients send.
func extractToken(r *http.Request) string {
	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	if len(parts) == 1 {
		return authorization
	}
	return ""
}
