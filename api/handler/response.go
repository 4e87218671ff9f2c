package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Aykachasanli/pascale-backend-server/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorKind struct {
	target error
	status int
	code   string
}

// Checked in order; the first match wins.
var serviceErrorKinds = []errorKind{
	{service.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
	{service.ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "AUTHENTICATION_ERROR"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "AUTHENTICATION_ERROR"},
	{service.ErrInvalidCode, http.StatusUnauthorized, "INVALID_CODE"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{service.ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE"},
	{service.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrEmailMismatch, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrProductNotFound, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrEmailAlreadyRegistered, http.StatusConflict, "CONFLICT"},
	{service.ErrAlreadyActive, http.StatusBadRequest, "ALREADY_ACTIVE"},
	{service.ErrNoPendingRequest, http.StatusBadRequest, "NO_PENDING_REQUEST"},
	{service.ErrStoreUnavailable, http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
	{service.ErrMediaUnavailable, http.StatusBadGateway, "MEDIA_UNAVAILABLE"},
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", service.ErrInvalidInput, err)
	}
	return nil
}

func validatePayload(validate *validator.Validate, payload any) error {
	if validate == nil {
		return nil
	}
	if err := validate.Struct(payload); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fe := fieldErrors[0]
			return fmt.Errorf("%w: %s failed on %q", service.ErrInvalidInput, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return nil
}

func writeError(c echo.Context, status int, code string, message string) error {
	return c.JSON(status, ErrorResponse{Code: code, Message: message})
}

// writeServiceError renders known service errors. Anything else is handed
// back to Echo as a 500 so the request logger records the cause.
func writeServiceError(c echo.Context, err error) error {
	for _, kind := range serviceErrorKinds {
		if !errors.Is(err, kind.target) {
			continue
		}
		message := err.Error()
		switch kind.target {
		case service.ErrStoreUnavailable, service.ErrMediaUnavailable:
			message = kind.target.Error()
			c.Set(contextCauseKey, err)
		}
		return writeError(c, kind.status, kind.code, message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

const contextCauseKey = "error_cause"

// ErrorCause returns the dependency failure hidden from the response body, if any.
func ErrorCause(c echo.Context) error {
	cause, _ := c.Get(contextCauseKey).(error)
	return cause
}

// NewHTTPErrorHandler renders Echo errors (routing, middleware, panics) in the
// same {"code","message"} shape the handlers use.
func NewHTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := "internal server error"

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(status)
			}
		}
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithField("uri", c.Request().RequestURI).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = writeError(c, status, codeForStatus(status), message)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "AUTHENTICATION_ERROR"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}

func parseLimitOffset(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
