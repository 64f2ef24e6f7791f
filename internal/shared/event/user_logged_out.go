package event

import "time"

const UserLoggedOutDestination string = "auth.user.logged_out"

type UserLoggedOutMessage struct {
	UserID       int64     `json:"user_id,string"`
	Email        string    `json:"email"`
	TokenRevoked bool      `json:"token_revoked"`
	OccurredAt   time.Time `json:"occurred_at"`
}
