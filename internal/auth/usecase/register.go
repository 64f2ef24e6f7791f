package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type RegisterInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,password"`
	Phone    string `validate:"required,max=32"`
	Address  string `validate:"required,max=255"`
}

type RegisterOutput struct {
	Email string
}

// Register stores a registration challenge holding the proposed account and
// sends its code. No user exists until RegisterVerify succeeds.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDirectory.GetUserByEmail(ctx, in.Email)
	if err == nil {
		slog.WarnContext(ctx, "registration for existing email", "email", in.Email)
		return nil, goerror.NewBusiness("Email already in use", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	hashedPassword, err := s.password.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	previous, err := s.getChallenge(ctx, entity.ChallengeKindRegistration, in.Email)
	if err != nil {
		return nil, err
	}

	next := entity.Challenge{
		Kind:  entity.ChallengeKindRegistration,
		Email: in.Email,
		Registration: &entity.Registration{
			Name:         in.Name,
			PasswordHash: string(hashedPassword),
			Phone:        in.Phone,
			Address:      in.Address,
		},
	}
	if err := s.issueChallenge(ctx, next, previous, in.Name); err != nil {
		return nil, err
	}

	return &RegisterOutput{Email: in.Email}, nil
}
