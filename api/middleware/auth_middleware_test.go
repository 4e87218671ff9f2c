package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWT = &utils.JWTManager{Secret: []byte("middleware-secret"), SessionTTL: time.Hour}

func issue(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	token, _, err := testJWT.IssueSessionToken(userID.String(), role)
	require.NoError(t, err)
	return token
}

func serve(t *testing.T, handler echo.HandlerFunc, authorization string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return rec, handler(e.NewContext(req, rec))
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	return httpErr.Code
}

func TestRequireAuth(t *testing.T) {
	m := AuthMiddleware{JWT: testJWT}
	userID := uuid.New()
	token := issue(t, userID, "user")

	var seen uuid.UUID
	handler := m.RequireAuth(func(c echo.Context) error {
		seen, _ = UserIDFromContext(c)
		role, _ := RoleFromContext(c)
		return c.String(http.StatusOK, role)
	})

	for _, header := range []string{"Bearer " + token, "bearer " + token, token} {
		seen = uuid.Nil
		rec, err := serve(t, handler, header)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user", rec.Body.String())
		assert.Equal(t, userID, seen)
	}

	_, err := serve(t, handler, "")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = serve(t, handler, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = serve(t, handler, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestOptionalAuth(t *testing.T) {
	m := AuthMiddleware{JWT: testJWT}
	handler := m.OptionalAuth(func(c echo.Context) error {
		if _, ok := UserIDFromContext(c); ok {
			return c.String(http.StatusOK, "session")
		}
		return c.String(http.StatusOK, "anonymous")
	})

	rec, err := serve(t, handler, "")
	require.NoError(t, err)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec, err = serve(t, handler, "Bearer "+issue(t, uuid.New(), "user"))
	require.NoError(t, err)
	assert.Equal(t, "session", rec.Body.String())

	_, err = serve(t, handler, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRequireRole(t *testing.T) {
	m := AuthMiddleware{JWT: testJWT}
	handler := m.RequireAuth(RequireRole("admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}))

	rec, err := serve(t, handler, "Bearer "+issue(t, uuid.New(), "admin"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = serve(t, handler, "Bearer "+issue(t, uuid.New(), "user"))
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}
