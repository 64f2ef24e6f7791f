package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type LogoutVerifyInput struct {
	Email string `validate:"required,email"`
	OTP   string `validate:"required,otp"`
	// Token is the caller's session token, if sent. When it belongs to the
	// same user it is revoked until it expires.
	Token string `validate:"-"`
}

type LogoutVerifyOutput struct {
	Success      bool
	TokenRevoked bool
}

// LogoutVerify confirms a pending logout. The client discards its credentials
// on success; a token passed in the input is revoked server-side as well.
func (s *Usecase) LogoutVerify(ctx context.Context, in LogoutVerifyInput) (*LogoutVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "LogoutVerify")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	c, err := s.matchChallenge(ctx, entity.ChallengeKindLogout, in.Email, in.OTP)
	if err != nil {
		return nil, err
	}

	user, err := s.repoDirectory.GetUserByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	revoked, err := s.revokeSessionToken(ctx, user, in.Token)
	if err != nil {
		return nil, err
	}

	s.deleteChallenge(ctx, c)

	if user != nil {
		ev := UserLoggedOutEvent{UserID: user.ID, Email: user.Email, TokenRevoked: revoked, OccurredAt: s.clock.Now()}
		s.publish(ctx, "publish_user_logged_out", func(ctx context.Context, r repoEvent) error {
			return r.PublishUserLoggedOut(ctx, ev)
		})
	}

	return &LogoutVerifyOutput{Success: true, TokenRevoked: revoked}, nil
}

// revokeSessionToken puts token on the revocation list when it is a valid
// token of user. Tokens of other users, or invalid ones, are ignored.
func (s *Usecase) revokeSessionToken(ctx context.Context, user *entity.User, token string) (bool, error) {
	if user == nil || token == "" {
		return false, nil
	}

	clm, err := s.jwt.Verify(token)
	if err != nil {
		slog.WarnContext(ctx, "logout with unusable session token", "user_id", user.ID, "error", err)
		return false, nil
	}
	if clm.UserID != user.ID {
		slog.WarnContext(ctx, "logout with session token of another user", "user_id", user.ID, "token_user_id", clm.UserID)
		return false, nil
	}

	if err := s.repoRevocation.RevokeToken(ctx, clm.TokenID(), clm.Expiry()); err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke token", "user_id", user.ID, "error", err)
		return false, goerror.NewServer(err)
	}

	return true, nil
}
