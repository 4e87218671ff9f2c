package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const identityKey = "auth_identity"

// Identity is what a verified session token says about the caller.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

func SetAuthContext(c echo.Context, userID uuid.UUID, role string) {
	c.Set(identityKey, Identity{UserID: userID, Role: role})
}

func IdentityFromContext(c echo.Context) (Identity, bool) {
	identity, ok := c.Get(identityKey).(Identity)
	return identity, ok
}

func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	identity, ok := IdentityFromContext(c)
	return identity.UserID, ok
}

func RoleFromContext(c echo.Context) (string, bool) {
	identity, ok := IdentityFromContext(c)
	return identity.Role, ok
}
