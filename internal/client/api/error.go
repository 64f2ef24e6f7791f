package api

import (
	"errors"
	"fmt"
)

// Fallback messages used when a failed response has no message.
const (
	msgLoginFailed        = "Login failed"
	msgRegisterFailed     = "Registration failed"
	msgVerifyFailed       = "OTP verification failed"
	msgResendFailed       = "Could not resend OTP"
	msgLogoutSendFailed   = "Could not send confirmation code"
	msgLogoutVerifyFailed = "Verification failed"
	msgUpdateFailed       = "Update failed"
)

// Error is a failed call. Status is 0 when no response was received.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// String includes the status and the underlying cause for logging.
func (e *Error) String() string {
	return fmt.Sprintf("status=%d message=%q cause=%v", e.Status, e.Message, e.cause)
}

// StatusOf returns the HTTP status of err, or 0 when err is not an *Error.
func StatusOf(err error) int {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Status
	}
	return 0
}
