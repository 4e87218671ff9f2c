package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHOTPCodeGenerator(t *testing.T) {
	six := regexp.MustCompile(`^[0-9]{6}$`)
	gen := NewHOTPCodeGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.Regexp(t, six, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestHOTPCodeGenerator_CustomDigits(t *testing.T) {
	gen := &HOTPCodeGenerator{
		Digits: otp.DigitsEight,
		Clock:  &fakeClock{now: time.Unix(1700000000, 0)},
	}
	code, err := gen.Generate()
	require.NoError(t, err)
	assert.Len(t, code, 8)
}
