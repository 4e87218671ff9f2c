package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Aykachasanli/pascale-backend-server/internal/dto"
	"github.com/Aykachasanli/pascale-backend-server/internal/entity"
	"github.com/Aykachasanli/pascale-backend-server/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const profileImageField = "profileImage"

type UserHandler struct {
	Service       *service.AccountService
	Validate      *validator.Validate
	MaxImageBytes int64
}

func NewUserHandler(svc *service.AccountService, validate *validator.Validate, maxImageBytes int64) *UserHandler {
	return &UserHandler{Service: svc, Validate: validate, MaxImageBytes: maxImageBytes}
}

func (h *UserHandler) Profile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	user, err := h.Service.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.UserResponseFromEntity(user))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := validatePayload(h.Validate, req); err != nil {
		return writeServiceError(c, err)
	}
	update := service.ProfileUpdate{
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Age:     req.Age,
	}
	user, err := h.Service.UpdateProfile(c.Request().Context(), userID, update)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "User details updated successfully.",
		Data:    dto.UserResponseFromEntity(user),
	})
}

func (h *UserHandler) ChangeProfileImage(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile(profileImageField)
	if err != nil {
		return writeServiceError(c, fmt.Errorf("%w: %s file is required", service.ErrInvalidInput, profileImageField))
	}
	file, err := openImage(header, h.MaxImageBytes)
	if err != nil {
		return writeServiceError(c, err)
	}
	defer file.Close()

	user, err := h.Service.ChangeProfileImage(c.Request().Context(), userID, file)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "Profile image updated.",
		Data:    dto.UserResponseFromEntity(user),
	})
}

func (h *UserHandler) ChangeRole(c echo.Context) error {
	callerID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	role := entity.UserRole(strings.ToLower(strings.TrimSpace(req.Role)))
	user, err := h.Service.ChangeRole(c.Request().Context(), callerID, parseTargetID(req.UserID), role)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "User role updated.",
		Data:    dto.UserResponseFromEntity(user),
	})
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	callerID, err := requireUserID(c)
	if err != nil {
		return err
	}
	limit, offset := parseLimitOffset(c)
	users, err := h.Service.ListUsers(c.Request().Context(), callerID, limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.UserResponsesFromEntities(users))
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	callerID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.UserIDRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeServiceError(c, err)
	}
	err = h.Service.DeleteUser(c.Request().Context(), callerID, parseTargetID(req.UserID))
	if err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "User deleted successfully.")
}

func (h *UserHandler) SecurityLog(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	limit, _ := parseLimitOffset(c)
	if limit == 0 {
		limit = 50
	}
	logs, err := h.Service.SecurityLog(c.Request().Context(), userID, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.SecurityLogResponsesFromEntities(logs))
}

// parseTargetID maps an unparseable id to uuid.Nil, which no record carries,
// so the service reports the target as missing.
func parseTargetID(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}
