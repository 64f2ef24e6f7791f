package hash

import (
	"errors"
	"strings"
)

// ErrUnknownAlgorithm is returned by NewPassword for an unsupported algorithm name.
var ErrUnknownAlgorithm = errors.New("hash: unknown password algorithm")

// Password algorithm names accepted by NewPassword.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Hash hashes secrets and verifies plaintext against a stored hash.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}

// PasswordConfig selects and configures the password hasher.
type PasswordConfig struct {
	Algorithm      string
	BcryptCost     int
	BcryptPepper   string
	Argon2idPepper string
}

// NewPassword returns the password hasher named by cfg.Algorithm.
// An empty algorithm selects bcrypt.
func NewPassword(cfg PasswordConfig) (Hash, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Algorithm)) {
	case "", AlgorithmBcrypt:
		return NewBcrypt(cfg.BcryptCost, cfg.BcryptPepper), nil
	case AlgorithmArgon2id:
		return NewArgon2id(cfg.Argon2idPepper), nil
	default:
		return nil, ErrUnknownAlgorithm
	}
}
