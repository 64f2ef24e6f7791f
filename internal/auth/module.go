// Package auth wires the OTP-gated registration, login, profile and logout
// flows into the HTTP router.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/auth/inbound"
	"github.com/shandysiswandi/otpgate/internal/auth/outbound/cache"
	"github.com/shandysiswandi/otpgate/internal/auth/outbound/db"
	"github.com/shandysiswandi/otpgate/internal/auth/outbound/email"
	"github.com/shandysiswandi/otpgate/internal/auth/outbound/memory"
	"github.com/shandysiswandi/otpgate/internal/auth/outbound/mq"
	"github.com/shandysiswandi/otpgate/internal/auth/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

// Storage backend names for storage.directory and storage.challenge.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

var (
	// ErrStorageUnavailable is returned when a configured backend has no connection.
	ErrStorageUnavailable = errors.New("auth: configured storage has no connection")
	// ErrUnknownStorage is returned for an unsupported backend name.
	ErrUnknownStorage = errors.New("auth: unknown storage backend")
)

type Dependency struct {
	// DBConn is required when storage.directory is postgres.
	DBConn *pgxpool.Pool
	// CacheConn is required when storage.challenge is redis.
	CacheConn *redis.Client
	// Messaging is required when modules.auth.events.enabled is set.
	Messaging messaging.Publisher

	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Password   hash.Hash                  `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	ucDep := usecase.Dependency{
		Validator:  dep.Validator,
		Config:     dep.Config,
		HMAC:       dep.HMAC,
		Password:   dep.Password,
		OTP:        dep.OTP,
		UID:        dep.UID,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
		Goroutine:  dep.Goroutine,
	}

	switch backend := strings.ToLower(dep.Config.GetString("storage.directory")); backend {
	case "", StorageMemory:
		ucDep.RepoDirectory = memory.NewDirectory()
	case StoragePostgres:
		if dep.DBConn == nil {
			return fmt.Errorf("%w: %s", ErrStorageUnavailable, backend)
		}
		if dep.Config.GetBool("database.migrate") {
			if err := db.Migrate(ctx, dep.DBConn); err != nil {
				return err
			}
		}
		ucDep.RepoDirectory = db.NewDB(dep.DBConn, dep.Instrument)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStorage, backend)
	}

	switch backend := strings.ToLower(dep.Config.GetString("storage.challenge")); backend {
	case "", StorageMemory:
		ucDep.RepoChallenge = memory.NewChallenges(dep.Clock)
		ucDep.RepoRevocation = memory.NewRevocations(dep.Clock)
	case StorageRedis:
		if dep.CacheConn == nil {
			return fmt.Errorf("%w: %s", ErrStorageUnavailable, backend)
		}
		c := cache.NewCache(dep.CacheConn, dep.Clock, dep.Instrument)
		ucDep.RepoChallenge = c
		ucDep.RepoRevocation = c
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStorage, backend)
	}

	notifier, err := email.New(dep.Mail, dep.Config.GetString("app.name"), dep.Clock, dep.Instrument)
	if err != nil {
		return err
	}
	ucDep.RepoNotifier = notifier

	if dep.Config.GetBool("modules.auth.events.enabled") && dep.Messaging != nil {
		ucDep.RepoEvent = mq.NewMessaging(dep.Messaging, dep.Instrument)
	}

	uc := usecase.New(ucDep)

	if err := seed(ctx, dep.Config, uc); err != nil {
		return err
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

func seed(ctx context.Context, cfg config.Config, uc *usecase.Usecase) error {
	email := cfg.GetString("modules.auth.seed.email")
	if email == "" {
		return nil
	}

	if _, err := uc.Seed(ctx, usecase.SeedInput{
		Name:     cfg.GetString("modules.auth.seed.name"),
		Email:    email,
		Password: cfg.GetString("modules.auth.seed.password"),
		Phone:    cfg.GetString("modules.auth.seed.phone"),
		Address:  cfg.GetString("modules.auth.seed.address"),
	}); err != nil {
		return fmt.Errorf("auth: seed user: %w", err)
	}

	return nil
}
