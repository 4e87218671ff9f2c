package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// DefaultSessionTTL is one week; there is no refresh flow.
const DefaultSessionTTL = 7 * 24 * time.Hour

type JWTManager struct {
	Secret     []byte
	Issuer     string
	SessionTTL time.Duration
}

// SessionClaims carries the account id in the subject and the role at issue time.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (m JWTManager) ttl() time.Duration {
	if m.SessionTTL <= 0 {
		return DefaultSessionTTL
	}
	return m.SessionTTL
}

func (m JWTManager) IssueSessionToken(userID string, role string) (string, time.Duration, error) {
	ttl := m.ttl()
	issuedAt := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	})
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", 0, err
	}
	return signed, ttl, nil
}

func (m JWTManager) ParseSessionToken(raw string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.Issuer))
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.Secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
