package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aykachasanli/pascale-backend-server/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: name is required", service.ErrInvalidInput), http.StatusBadRequest, "VALIDATION_ERROR"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "AUTHENTICATION_ERROR"},
		{service.ErrInvalidCode, http.StatusUnauthorized, "INVALID_CODE"},
		{service.ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE"},
		{service.ErrEmailMismatch, http.StatusNotFound, "NOT_FOUND"},
		{service.ErrEmailAlreadyRegistered, http.StatusConflict, "CONFLICT"},
		{service.ErrNoPendingRequest, http.StatusBadRequest, "NO_PENDING_REQUEST"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			c, rec := newContext()
			require.NoError(t, writeServiceError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"code":%q,"message":%q}`, tc.code, tc.err.Error()), rec.Body.String())
		})
	}
}

func TestWriteServiceError_HidesDependencyCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	c, rec := newContext()

	require.NoError(t, writeServiceError(c, fmt.Errorf("%w: %w", service.ErrStoreUnavailable, cause)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.ErrorIs(t, ErrorCause(c), cause)
}

func TestWriteServiceError_UnknownIsInternal(t *testing.T) {
	c, _ := newContext()
	err := writeServiceError(c, errors.New("boom"))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	assert.EqualError(t, httpErr.Internal, "boom")
}

func TestHTTPErrorHandler(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	handle := NewHTTPErrorHandler(logger)

	c, rec := newContext()
	handle(echo.NewHTTPError(http.StatusTooManyRequests, "too many requests"), c)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"code":"RATE_LIMITED","message":"too many requests"}`, rec.Body.String())
	assert.Empty(t, hook.AllEntries())

	c, rec = newContext()
	handle(errors.New("panic recovered"), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"internal server error"}`, rec.Body.String())
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
