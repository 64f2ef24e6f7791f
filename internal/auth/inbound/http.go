package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/auth/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) (*usecase.AuthOutput, error)
	RegisterResend(ctx context.Context, in usecase.RegisterResendInput) (*usecase.RegisterResendOutput, error)

	Login(ctx context.Context, in usecase.LoginInput) (*usecase.AuthOutput, error)
	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) (*usecase.ProfileUpdateOutput, error)

	Logout(ctx context.Context, in usecase.LogoutInput) (*usecase.LogoutOutput, error)
	LogoutVerify(ctx context.Context, in usecase.LogoutVerifyInput) (*usecase.LogoutVerifyOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration
	r.POST("/auth/register", end.Register)
	r.POST("/auth/verify-otp", end.RegisterVerify)
	r.POST("/auth/resend-otp", end.RegisterResend)

	// Session
	r.POST("/auth/login", end.Login)
	r.PUT("/auth/profile", end.ProfileUpdate) // need authenticated

	// Logout confirmation
	r.POST("/auth/logout-otp", end.Logout)
	r.POST("/auth/verify-logout-otp", end.LogoutVerify)
}
