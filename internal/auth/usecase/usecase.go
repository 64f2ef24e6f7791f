package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultChallengeTTL is how long an issued code stays valid when not configured.
	DefaultChallengeTTL = 15 * time.Minute
	// DefaultChallengeRetention is how long a challenge is kept after it was
	// issued, so a late verify still reports Expired.
	DefaultChallengeRetention = 24 * time.Hour
)

// ChallengeNotification is what the notifier needs to deliver a code.
type ChallengeNotification struct {
	Kind  entity.ChallengeKind
	Email string
	Name  string
	Code  string
	TTL   time.Duration
}

type UserRegisteredEvent struct {
	UserID     int64
	Email      string
	Name       string
	OccurredAt time.Time
}

type UserLoggedOutEvent struct {
	UserID       int64
	Email        string
	TokenRevoked bool
	OccurredAt   time.Time
}

type repoDirectory interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	CreateUser(ctx context.Context, user entity.User) error
	UpdateProfile(ctx context.Context, id int64, p entity.Profile) (*entity.User, error)
}

type repoChallenge interface {
	Get(ctx context.Context, kind entity.ChallengeKind, email string) (*entity.Challenge, error)
	// Save replaces the challenge for (c.Kind, c.Email) and keeps it for at
	// least keep, after which it may be evicted.
	Save(ctx context.Context, c entity.Challenge, keep time.Duration) error
	Delete(ctx context.Context, kind entity.ChallengeKind, email string) error
	// Discard deletes the challenge only while it still holds codeHash.
	Discard(ctx context.Context, kind entity.ChallengeKind, email, codeHash string) error
	// AddAttempt counts a wrong code against the challenge holding codeHash
	// and returns the new count, deleting the challenge once limit (> 0) is
	// reached. It returns goerror.ErrNotFound when the key holds another code.
	AddAttempt(ctx context.Context, kind entity.ChallengeKind, email, codeHash string, limit int) (int, error)
}

type repoRevocation interface {
	RevokeToken(ctx context.Context, jti string, until time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type repoNotifier interface {
	SendChallenge(ctx context.Context, msg ChallengeNotification) error
}

type repoEvent interface {
	PublishUserRegistered(ctx context.Context, ev UserRegisteredEvent) error
	PublishUserLoggedOut(ctx context.Context, ev UserLoggedOutEvent) error
}

type Usecase struct {
	repoDirectory  repoDirectory
	repoChallenge  repoChallenge
	repoRevocation repoRevocation
	repoNotifier   repoNotifier
	repoEvent      repoEvent
	validator      validator.Validator
	cfg            config.Config
	hmac           hash.Hash
	password       hash.Hash
	otp            otp.Generator
	uid            uid.NumberID
	clock          clock.Clocker
	jwt            jwt.JWT
	ins            instrument.Instrumentation
	goroutine      *goroutine.Manager
}

type Dependency struct {
	RepoDirectory  repoDirectory
	RepoChallenge  repoChallenge
	RepoRevocation repoRevocation
	RepoNotifier   repoNotifier
	// RepoEvent is optional; nil disables domain events.
	RepoEvent  repoEvent
	Validator  validator.Validator
	Config     config.Config
	HMAC       hash.Hash
	Password   hash.Hash
	OTP        otp.Generator
	UID        uid.NumberID
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDirectory:  dep.RepoDirectory,
		repoChallenge:  dep.RepoChallenge,
		repoRevocation: dep.RepoRevocation,
		repoNotifier:   dep.RepoNotifier,
		repoEvent:      dep.RepoEvent,
		validator:      dep.Validator,
		cfg:            dep.Config,
		hmac:           dep.HMAC,
		password:       dep.Password,
		otp:            dep.OTP,
		uid:            dep.UID,
		clock:          dep.Clock,
		jwt:            dep.JWT,
		ins:            dep.Instrument,
		goroutine:      dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) challengeTTL() time.Duration {
	if ttl := s.cfg.GetMinute("modules.auth.challenge.ttl_minutes"); ttl > 0 {
		return ttl
	}
	return DefaultChallengeTTL
}

// challengeRetention keeps an expired challenge around long enough for verify
// to report Expired instead of NotFound.
func (s *Usecase) challengeRetention() time.Duration {
	keep := s.cfg.GetMinute("modules.auth.challenge.retention_minutes")
	if keep <= 0 {
		keep = DefaultChallengeRetention
	}
	return max(keep, 2*s.challengeTTL())
}

func (s *Usecase) maxAttempts() int {
	return s.cfg.GetInt("modules.auth.challenge.max_attempts")
}

// getChallenge returns the stored challenge for the key, or nil when none exists.
func (s *Usecase) getChallenge(ctx context.Context, kind entity.ChallengeKind, email string) (*entity.Challenge, error) {
	c, err := s.repoChallenge.Get(ctx, kind, email)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get challenge", "kind", kind, "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return c, nil
}

// issueChallenge stores a fresh code for (next.Kind, next.Email), replacing
// previous, and sends it. When delivery fails the store is put back to
// previous (or emptied) so no unsent code stays valid.
func (s *Usecase) issueChallenge(ctx context.Context, next entity.Challenge, previous *entity.Challenge, name string) error {
	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp", "kind", next.Kind, "error", err)
		return goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp", "kind", next.Kind, "error", err)
		return goerror.NewServer(err)
	}

	ttl := s.challengeTTL()
	next.CodeHash = string(codeHash)
	next.CreatedAt = s.clock.Now()
	next.Attempts = 0

	if err := s.repoChallenge.Save(ctx, next, s.challengeRetention()); err != nil {
		slog.ErrorContext(ctx, "failed to repo save challenge", "kind", next.Kind, "email", next.Email, "error", err)
		return goerror.NewServer(err)
	}

	err = s.repoNotifier.SendChallenge(ctx, ChallengeNotification{
		Kind:  next.Kind,
		Email: next.Email,
		Name:  name,
		Code:  code,
		TTL:   ttl,
	})
	if err == nil {
		return nil
	}

	slog.ErrorContext(ctx, "failed to send challenge code", "kind", next.Kind, "email", next.Email, "error", err)

	var rbErr error
	if previous != nil {
		rbErr = s.repoChallenge.Save(ctx, *previous, s.challengeRetention())
	} else {
		rbErr = s.repoChallenge.Delete(ctx, next.Kind, next.Email)
	}
	if rbErr != nil {
		slog.ErrorContext(ctx, "failed to roll back challenge", "kind", next.Kind, "email", next.Email, "error", rbErr)
	}

	return goerror.NewDelivery(err, "Failed to send verification email. Please try again later.")
}

var notFoundMessages = map[entity.ChallengeKind]string{
	entity.ChallengeKindRegistration: "No pending registration found for this email",
	entity.ChallengeKindLogout:       "No pending logout request found for this email",
}

var expiredMessages = map[entity.ChallengeKind]string{
	entity.ChallengeKindRegistration: "OTP has expired. Please register again",
	entity.ChallengeKindLogout:       "OTP has expired. Please try again",
}

// matchChallenge checks code against the pending challenge for the key and
// returns it on a match without deleting it. Expired challenges are deleted;
// mismatches count toward the attempt limit.
func (s *Usecase) matchChallenge(ctx context.Context, kind entity.ChallengeKind, email, code string) (*entity.Challenge, error) {
	c, err := s.getChallenge(ctx, kind, email)
	if err != nil {
		return nil, err
	}
	if c == nil {
		slog.WarnContext(ctx, "pending challenge not found", "kind", kind, "email", email)
		return nil, goerror.NewBusiness(notFoundMessages[kind], goerror.CodeNotFound)
	}

	if c.Expired(s.clock.Now(), s.challengeTTL()) {
		slog.WarnContext(ctx, "pending challenge expired", "kind", kind, "email", email, "created_at", c.CreatedAt)
		if err := s.repoChallenge.Discard(ctx, kind, email, c.CodeHash); err != nil {
			slog.ErrorContext(ctx, "failed to repo discard expired challenge", "kind", kind, "email", email, "error", err)
			return nil, goerror.NewServer(err)
		}
		return nil, goerror.NewBusiness(expiredMessages[kind], goerror.CodeExpired)
	}

	if s.hmac.Verify(c.CodeHash, code) {
		return c, nil
	}

	limit := s.maxAttempts()
	attempts, err := s.repoChallenge.AddAttempt(ctx, kind, email, c.CodeHash, limit)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "challenge code mismatch on a replaced challenge", "kind", kind, "email", email)
		return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeMismatch)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo add challenge attempt", "kind", kind, "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.WarnContext(ctx, "challenge code mismatch", "kind", kind, "email", email, "attempts", attempts)

	if limit > 0 && attempts >= limit {
		return nil, goerror.NewBusiness("Too many incorrect codes. Please request a new one", goerror.CodeTooManyRequest)
	}

	return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeMismatch)
}

// deleteChallenge removes a consumed challenge unless a newer code already
// replaced it. The action it gated already happened, so a failure is only
// logged.
func (s *Usecase) deleteChallenge(ctx context.Context, c *entity.Challenge) {
	if err := s.repoChallenge.Discard(ctx, c.Kind, c.Email, c.CodeHash); err != nil {
		slog.ErrorContext(ctx, "failed to repo discard consumed challenge", "kind", c.Kind, "email", c.Email, "error", err)
	}
}

func (s *Usecase) issueToken(ctx context.Context, user *entity.User) (string, error) {
	token, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "user_id", user.ID, "error", err)
		return "", goerror.NewServer(err)
	}

	return token, nil
}

// publish runs fn in the background when events are enabled.
func (s *Usecase) publish(ctx context.Context, name string, fn func(ctx context.Context, ev repoEvent) error) {
	if s.repoEvent == nil {
		return
	}

	s.goroutine.Go(ctx, name, func(ctx context.Context) error {
		return fn(ctx, s.repoEvent)
	})
}
