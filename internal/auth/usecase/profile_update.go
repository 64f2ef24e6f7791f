package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
)

type ProfileUpdateInput struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email,max=254"`
	Phone   string `validate:"max=32"`
	Address string `validate:"max=255"`
}

type ProfileUpdateOutput struct {
	User entity.User
}

// ProfileUpdate replaces the mutable fields of the authenticated user.
func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) (*ProfileUpdateOutput, error) {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDirectory.UpdateProfile(ctx, clm.UserID, entity.Profile{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "profile update for missing user", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeStaleSession)
	}
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "profile email taken by another user", "user_id", clm.UserID, "email", in.Email)
		return nil, goerror.NewBusiness("Email is already used by another user", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update profile", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileUpdateOutput{User: *user}, nil
}

// authenticated returns the verified claims of the request, rejecting tokens
// revoked by a confirmed logout.
func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	revoked, err := s.repoRevocation.IsTokenRevoked(ctx, clm.TokenID())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check token revocation", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if revoked {
		slog.WarnContext(ctx, "revoked token used", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}

	return clm, nil
}
