package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type RegisterResendInput struct {
	Email string `validate:"required,email"`
}

type RegisterResendOutput struct {
	Email string
}

// RegisterResend replaces the pending registration code with a new one,
// keeping the proposed account unchanged.
func (s *Usecase) RegisterResend(ctx context.Context, in RegisterResendInput) (*RegisterResendOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterResend")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	previous, err := s.getChallenge(ctx, entity.ChallengeKindRegistration, in.Email)
	if err != nil {
		return nil, err
	}
	if previous == nil || previous.Registration == nil {
		slog.WarnContext(ctx, "resend without pending registration", "email", in.Email)
		return nil, goerror.NewBusiness(notFoundMessages[entity.ChallengeKindRegistration], goerror.CodeNotFound)
	}

	next := entity.Challenge{
		Kind:         entity.ChallengeKindRegistration,
		Email:        in.Email,
		Registration: previous.Registration,
	}
	if err := s.issueChallenge(ctx, next, previous, previous.Registration.Name); err != nil {
		return nil, err
	}

	return &RegisterResendOutput{Email: in.Email}, nil
}
