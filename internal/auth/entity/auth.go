package entity

import "time"

// User is a durable account record. PasswordHash never leaves the server.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
}

// Profile holds the user fields a profile update may replace.
type Profile struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Registration is the proposed account carried by a registration challenge.
// It becomes a User only once the code is verified.
type Registration struct {
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// Challenge is a pending one-time code, keyed by (Kind, Email).
// Storing a challenge replaces any previous one for the same key.
type Challenge struct {
	Kind      ChallengeKind `json:"kind"`
	Email     string        `json:"email"`
	CodeHash  string        `json:"code_hash"`
	CreatedAt time.Time     `json:"created_at"`
	Attempts  int           `json:"attempts"`

	// Registration is set only for ChallengeKindRegistration.
	Registration *Registration `json:"registration,omitempty"`
}

// Expired reports whether the challenge is older than ttl at now.
func (c Challenge) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.CreatedAt) > ttl
}
