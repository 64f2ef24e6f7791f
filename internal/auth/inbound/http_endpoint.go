package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/auth/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

const msgCodeSent = "We have sent a verification code to your email"

// HTTPEndpoint exposes HTTP handlers for the registration, login, profile and
// logout flows.
type HTTPEndpoint struct {
	uc uc
}

// Register starts a registration and emails a verification code.
// @Summary Request registration code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Proposed account"
// @Success 200 {object} ChallengeSentResponse
// @Failure 400 {object} router.ErrorResponse "Invalid input or email already in use"
// @Failure 500 {object} router.ErrorResponse "Email could not be sent"
// @Router /auth/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return nil, err
	}

	return ChallengeSentResponse{Message: msgCodeSent, Email: resp.Email}, nil
}

// RegisterVerify completes a registration and returns a session.
// @Summary Verify registration code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Email and code"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} router.ErrorResponse "No pending registration, expired or wrong code"
// @Failure 429 {object} router.ErrorResponse "Too many wrong codes"
// @Router /auth/verify-otp [post]
func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterVerify(r.Context(), usecase.RegisterVerifyInput{Email: req.Email, OTP: req.OTP})
	if err != nil {
		return nil, err
	}

	return AuthResponse{
		Message: "Registration successful",
		Token:   resp.Token,
		User:    newUserResponse(resp.User),
	}, nil
}

// RegisterResend sends a new registration code.
// @Summary Resend registration code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 200 {object} ChallengeSentResponse
// @Failure 400 {object} router.ErrorResponse "No pending registration"
// @Failure 500 {object} router.ErrorResponse "Email could not be sent"
// @Router /auth/resend-otp [post]
func (h *HTTPEndpoint) RegisterResend(r *router.Request) (any, error) {
	var req EmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterResend(r.Context(), usecase.RegisterResendInput{Email: req.Email})
	if err != nil {
		return nil, err
	}

	return ChallengeSentResponse{Message: "OTP has been resent", Email: resp.Email}, nil
}

// Login authenticates with email and password.
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} router.ErrorResponse "Invalid request body"
// @Failure 401 {object} router.ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}

	return AuthResponse{
		Message: "Login successful",
		Token:   resp.Token,
		User:    newUserResponse(resp.User),
	}, nil
}

// ProfileUpdate replaces the profile of the authenticated user.
// @Summary Update profile
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileUpdateRequest true "Profile"
// @Success 200 {object} ProfileUpdateResponse
// @Failure 400 {object} router.ErrorResponse "Invalid input or email used by another user"
// @Failure 401 {object} router.ErrorResponse "Missing, invalid or revoked token"
// @Failure 404 {object} router.ErrorResponse "User not found"
// @Router /auth/profile [put]
func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	var req ProfileUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}

	return ProfileUpdateResponse{Message: "Profile updated successfully", User: newUserResponse(resp.User)}, nil
}

// Logout emails a code that confirms the logout.
// @Summary Request logout code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 200 {object} ChallengeSentResponse
// @Failure 400 {object} router.ErrorResponse "No account with this email"
// @Failure 500 {object} router.ErrorResponse "Email could not be sent"
// @Router /auth/logout-otp [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req EmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Logout(r.Context(), usecase.LogoutInput{Email: req.Email})
	if err != nil {
		return nil, err
	}

	return ChallengeSentResponse{Message: msgCodeSent, Email: resp.Email}, nil
}

// LogoutVerify confirms a logout. An optional bearer token of the same user
// is revoked.
// @Summary Verify logout code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Email and code"
// @Success 200 {object} LogoutVerifyResponse
// @Failure 400 {object} router.ErrorResponse "No pending logout, expired or wrong code"
// @Failure 429 {object} router.ErrorResponse "Too many wrong codes"
// @Router /auth/verify-logout-otp [post]
func (h *HTTPEndpoint) LogoutVerify(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	token, _ := r.BearerToken()

	resp, err := h.uc.LogoutVerify(r.Context(), usecase.LogoutVerifyInput{
		Email: req.Email,
		OTP:   req.OTP,
		Token: token,
	})
	if err != nil {
		return nil, err
	}

	return LogoutVerifyResponse{Message: "Verification successful. You can now log out.", Success: resp.Success}, nil
}
