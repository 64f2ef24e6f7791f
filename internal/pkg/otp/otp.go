package otp

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// ErrInvalidDigits indicates an unsupported code length.
var ErrInvalidDigits = errors.New("otp: digits must be between 4 and 10")

// Generator defines the contract for issuing one-time codes.
type Generator interface {
	// Generate returns a fresh code. Every digit is drawn uniformly, so leading
	// zeros are allowed and the length is always fixed.
	Generate() (string, error)
}

// Numeric issues fixed-length codes made of ASCII digits.
type Numeric struct {
	digits int
}

// NewNumeric constructs a Numeric generator producing codes of the given length.
func NewNumeric(digits int) (*Numeric, error) {
	if digits < 4 || digits > 10 {
		return nil, ErrInvalidDigits
	}

	return &Numeric{digits: digits}, nil
}

// Digits returns the code length.
func (n *Numeric) Digits() int {
	return n.digits
}

// Generate returns a new code using crypto/rand.
func (n *Numeric) Generate() (string, error) {
	var b strings.Builder
	b.Grow(n.digits)

	ten := big.NewInt(10)
	for range n.digits {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}

	return b.String(), nil
}

// IsNumeric reports whether s has exactly length ASCII digits.
func IsNumeric(s string, length int) bool {
	if len(s) != length {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
