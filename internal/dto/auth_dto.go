package dto

import (
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"
)

// RegisterRequest leaves presence checks to the service so whitespace-only
// values are rejected the same way as missing ones.
type RegisterRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type CodeRequest struct {
	Code string `json:"otp" validate:"required"`
}

type EmailCodeRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"otp" validate:"required"`
}

// ChangePasswordRequest serves both the session path (oldPassword) and the
// recovery path (email + otp).
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
	Email       string `json:"email"`
	Code        string `json:"otp"`
}

type EmailChangeRequest struct {
	NewEmail string `json:"newEmail"`
}

// ChangeRoleRequest is checked by the service, which decides permission
// before it looks at the payload.
type ChangeRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type UserIDRequest struct {
	UserID string `json:"user_id"`
}

type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Age     int    `json:"age" validate:"omitempty,min=0"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProfileResponse struct {
	Message string       `json:"message"`
	Data    UserResponse `json:"data"`
}

// UserResponse is the safe projection of a user. It never carries the
// password hash or the pending code.
type UserResponse struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	ProfileImage *string   `json:"profileImage"`
	Role         string    `json:"role"`
	Phone        *string   `json:"phone"`
	Address      *string   `json:"address"`
	Age          *int      `json:"age"`
	RegisterDate time.Time `json:"registerDate"`
	IsActive     bool      `json:"isActive"`
}

func UserResponseFromEntity(user *entity.User) UserResponse {
	return UserResponse{
		ID:           user.ID.String(),
		Name:         user.Name,
		Surname:      user.Surname,
		Email:        user.Email,
		ProfileImage: user.ProfileImage,
		Role:         string(user.Role),
		Phone:        user.Phone,
		Address:      user.Address,
		Age:          user.Age,
		RegisterDate: user.RegisteredAt,
		IsActive:     user.IsActive,
	}
}

func UserResponsesFromEntities(users []entity.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, UserResponseFromEntity(&users[i]))
	}
	return responses
}
