package handler

import (
	"net/http"

	"github.com/Aykachasanli/pascale-backend-server/api/middleware"
	"github.com/Aykachasanli/pascale-backend-server/internal/dto"
	"github.com/Aykachasanli/pascale-backend-server/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthHandler serves the credential and code-driven account flows.
type AuthHandler struct {
	Service  *service.AccountService
	Validate *validator.Validate
}

func NewAuthHandler(svc *service.AccountService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Service: svc, Validate: validate}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := h.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	input := service.RegisterInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: req.Password,
	}
	user, err := h.Service.Register(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.ProfileResponse{
		Message: "User registration completed.",
		Data:    dto.UserResponseFromEntity(user),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	input := service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: stringPtr(c.RealIP()),
	}
	result, err := h.Service.Login(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.LoginResponse{Token: result.Token, ExpiresIn: result.ExpiresIn})
}

func (h *AuthHandler) SendCode(c echo.Context) error {
	var req dto.EmailRequest
	if err := h.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.Service.RequestCode(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "OTP code sent to "+req.Email+".")
}

func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req dto.EmailRequest
	if err := h.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.Service.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "OTP code sent to "+req.Email+".")
}

// ChangePassword runs behind OptionalAuth: a session selects the old-password
// path, otherwise email and otp select the recovery path.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req dto.ChangePasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	input := service.ChangePasswordInput{
		CurrentPassword: req.OldPassword,
		Email:           req.Email,
		Code:            req.Code,
		NewPassword:     req.NewPassword,
	}
	if userID, ok := middleware.UserIDFromContext(c); ok {
		input.UserID = &userID
	}
	if err := h.Service.ChangePassword(c.Request().Context(), input); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "Password changed successfully.")
}

func (h *AuthHandler) RequestDeactivation(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.EmailRequest
	if err := h.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.Service.RequestDeactivation(c.Request().Context(), userID, req.Email); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "OTP code sent to "+req.Email+".")
}

func (h *AuthHandler) ConfirmDeactivation(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.CodeRequest
	if err := h.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.Service.ConfirmDeactivation(c.Request().Context(), userID, req.Code); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "User account deactivated.")
}

func (h *AuthHandler) RequestReactivation(c echo.Context) error {
	var req dto.EmailRequest
	if err := h.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.Service.RequestReactivation(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "OTP code sent to "+req.Email+".")
}

func (h *AuthHandler) ConfirmReactivation(c echo.Context) error {
	var req dto.EmailCodeRequest
	if err := h.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.Service.ConfirmReactivation(c.Request().Context(), req.Email, req.Code); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "User account reactivated.")
}

func (h *AuthHandler) RequestAccountDeletion(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	if err := h.Service.RequestAccountDeletion(c.Request().Context(), userID); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "OTP code sent.")
}

func (h *AuthHandler) ConfirmAccountDeletion(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.CodeRequest
	if err := h.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.Service.ConfirmAccountDeletion(c.Request().Context(), userID, req.Code); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "User account deleted successfully.")
}

func (h *AuthHandler) InitiateEmailChange(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.EmailChangeRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.Service.InitiateEmailChange(c.Request().Context(), userID, req.NewEmail); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "OTP code sent to "+req.NewEmail+".")
}

func (h *AuthHandler) ConfirmEmailChange(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.CodeRequest
	if err := h.bind(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	user, err := h.Service.ConfirmEmailChange(c.Request().Context(), userID, req.Code)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "Email address updated.",
		Data:    dto.UserResponseFromEntity(user),
	})
}

func (h *AuthHandler) bind(c echo.Context, target any) error {
	if err := decodeJSON(c, target); err != nil {
		return err
	}
	return validatePayload(h.Validate, target)
}

func requireUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session token")
	}
	return userID, nil
}

func message(c echo.Context, text string) error {
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: text})
}
