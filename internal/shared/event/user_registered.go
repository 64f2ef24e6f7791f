package event

import "time"

const UserRegisteredDestination string = "auth.user.registered"

type UserRegisteredMessage struct {
	UserID     int64     `json:"user_id,string"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}
