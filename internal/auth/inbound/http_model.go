package inbound

import (
	"strconv"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
)

type UserResponse struct {
	ID      string `json:"id" example:"1931234567890123456"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func newUserResponse(u entity.User) UserResponse {
	return UserResponse{
		ID:      strconv.FormatInt(u.ID, 10),
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Address: u.Address,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// ChallengeSentResponse answers every request that sends a code.
type ChallengeSentResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a fresh session.
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type ProfileUpdateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ProfileUpdateResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type LogoutVerifyResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
