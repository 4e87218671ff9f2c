package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrBadRequest             = errors.New("invalid request details")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrForbidden              = errors.New("you do not have permission for this operation")
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailMismatch          = errors.New("email address is incorrect")
	ErrProductNotFound        = errors.New("product not found")
	ErrEmailAlreadyRegistered = errors.New("this email is already in use")
	ErrInvalidCode            = errors.New("invalid one-time code")
	ErrAccountInactive        = errors.New("user profile is not active, please reactivate your account")
	ErrAlreadyActive          = errors.New("user is already active")
	ErrNoPendingRequest       = errors.New("email change request not found")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrMediaUnavailable       = errors.New("media host unavailable")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func storeError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func mediaError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrMediaUnavailable, err)
}
