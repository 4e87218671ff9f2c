package service

import (
	"io"

	"github.com/google/uuid"
)

type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress *string
}

type LoginResult struct {
	Token     string
	ExpiresIn int64
}

// ChangePasswordInput carries both authorization paths. UserID set means the
// caller presented a session; otherwise Email and Code drive the recovery path.
type ChangePasswordInput struct {
	UserID          *uuid.UUID
	CurrentPassword string
	Email           string
	Code            string
	NewPassword     string
}

// ProfileUpdate fields left empty (or zero) keep their stored value.
// Email is accepted but never applied; email changes go through InitiateEmailChange.
type ProfileUpdate struct {
	Name    string
	Surname string
	Email   string
	Phone   string
	Address string
	Age     int
}

type ProductInput struct {
	Name    string
	Details string
	Price   *float64
	Image   io.ReadSeeker
}
