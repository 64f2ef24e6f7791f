package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type LogoutInput struct {
	Email string `validate:"required,email"`
}

type LogoutOutput struct {
	Email string
}

// Logout sends a code that must be confirmed with LogoutVerify. Calling it
// again replaces the pending code.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) (*LogoutOutput, error) {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDirectory.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "logout challenge for unknown email", "email", in.Email)
		return nil, goerror.NewBusiness("No account found with this email", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	previous, err := s.getChallenge(ctx, entity.ChallengeKindLogout, in.Email)
	if err != nil {
		return nil, err
	}

	next := entity.Challenge{Kind: entity.ChallengeKindLogout, Email: user.Email}
	if err := s.issueChallenge(ctx, next, previous, user.Name); err != nil {
		return nil, err
	}

	return &LogoutOutput{Email: user.Email}, nil
}
