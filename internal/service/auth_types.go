package service

import (
	"context"
	"io"
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"

	"golang.org/x/crypto/bcrypt"
)

type AccountConfig struct {
	// SuperAdminEmail names the one admin allowed to demote admins and delete users.
	SuperAdminEmail string
	// CodeTTL bounds how long a pending code stays valid. Zero disables expiry.
	CodeTTL         time.Duration
	DeliveryTimeout time.Duration
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type SessionTokenIssuer interface {
	IssueSessionToken(user entity.User) (string, time.Duration, error)
}

type CodeGenerator interface {
	Generate() (string, error)
}

// CodeSender delivers one-time codes out of band. Callers never wait on it.
type CodeSender interface {
	SendCode(ctx context.Context, email string, code string) error
}

type MediaObject struct {
	Key string
	URL string
}

type MediaStore interface {
	Upload(ctx context.Context, body io.ReadSeeker, contentType string, ext string, category string) (MediaObject, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
