package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type RegisterVerifyInput struct {
	Email string `validate:"required,email"`
	OTP   string `validate:"required,otp"`
}

type AuthOutput struct {
	Token string
	User  entity.User
}

// RegisterVerify creates the proposed account once the code matches and
// returns a session token for it. The challenge is single-use.
func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) (*AuthOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	c, err := s.matchChallenge(ctx, entity.ChallengeKindRegistration, in.Email, in.OTP)
	if err != nil {
		return nil, err
	}
	if c.Registration == nil {
		slog.ErrorContext(ctx, "registration challenge without proposed account", "email", in.Email)
		s.deleteChallenge(ctx, c)
		return nil, goerror.NewBusiness(notFoundMessages[entity.ChallengeKindRegistration], goerror.CodeNotFound)
	}

	user := entity.User{
		ID:           s.uid.Generate(),
		Name:         c.Registration.Name,
		Email:        c.Email,
		PasswordHash: c.Registration.PasswordHash,
		Phone:        c.Registration.Phone,
		Address:      c.Registration.Address,
	}

	err = s.repoDirectory.CreateUser(ctx, user)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "email registered while challenge was pending", "email", in.Email)
		s.deleteChallenge(ctx, c)
		return nil, goerror.NewBusiness("Email already in use", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.deleteChallenge(ctx, c)

	token, err := s.issueToken(ctx, &user)
	if err != nil {
		return nil, err
	}

	ev := UserRegisteredEvent{UserID: user.ID, Email: user.Email, Name: user.Name, OccurredAt: s.clock.Now()}
	s.publish(ctx, "publish_user_registered", func(ctx context.Context, r repoEvent) error {
		return r.PublishUserRegistered(ctx, ev)
	})

	return &AuthOutput{Token: token, User: user}, nil
}
