package service

import (
	"crypto/rand"
	"encoding/base32"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// HOTPCodeGenerator derives each code from a throwaway random secret, so
// codes are six digits, may start with zero, and never repeat a pattern.
type HOTPCodeGenerator struct {
	Digits    otp.Digits
	Algorithm otp.Algorithm
	Clock     Clock
}

func NewHOTPCodeGenerator() *HOTPCodeGenerator {
	return &HOTPCodeGenerator{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
		Clock:     RealClock{},
	}
}

func (g *HOTPCodeGenerator) Generate() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
	return hotp.GenerateCodeCustom(secret, g.counter(), hotp.ValidateOpts{
		Digits:    g.digits(),
		Algorithm: g.algorithm(),
	})
}

func (g *HOTPCodeGenerator) counter() uint64 {
	if g.Clock == nil {
		return uint64(time.Now().Unix())
	}
	return uint64(g.Clock.Now().Unix())
}

func (g *HOTPCodeGenerator) digits() otp.Digits {
	if g.Digits == 0 {
		return otp.DigitsSix
	}
	return g.Digits
}

func (g *HOTPCodeGenerator) algorithm() otp.Algorithm {
	if g.Algorithm == 0 {
		return otp.AlgorithmSHA1
	}
	return g.Algorithm
}
