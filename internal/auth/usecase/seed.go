package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type SeedInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	Phone    string
	Address  string
}

// Seed creates a ready-to-use account unless the email already exists.
// It reports whether an account was created.
func (s *Usecase) Seed(ctx context.Context, in SeedInput) (bool, error) {
	ctx, span := s.startSpan(ctx, "Seed")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return false, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDirectory.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		return false, goerror.NewServer(err)
	}

	hashedPassword, err := s.password.Hash(in.Password)
	if err != nil {
		return false, goerror.NewServer(err)
	}

	user := entity.User{
		ID:           s.uid.Generate(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
	}
	if err := s.repoDirectory.CreateUser(ctx, user); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return false, nil
		}
		return false, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "seed user created", "user_id", user.ID, "email", user.Email)

	return true, nil
}
