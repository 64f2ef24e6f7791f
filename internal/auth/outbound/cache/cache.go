// Package cache keeps pending challenges and revoked token ids in Redis so
// several server instances can share them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	prefixChallenge = "otpgate:challenge:"
	prefixRevoked   = "otpgate:revoked:"

	maxWatchRetries = 5
)

type Cache struct {
	client *redis.Client
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

func NewCache(client *redis.Client, clk clock.Clocker, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, clock: clk, ins: ins}
}

func challengeKey(kind entity.ChallengeKind, email string) string {
	return prefixChallenge + string(kind) + ":" + email
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("auth.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Cache) Get(ctx context.Context, kind entity.ChallengeKind, email string) (_ *entity.Challenge, err error) {
	ctx, span := c.startSpan(ctx, "GetChallenge")
	defer func() { c.endSpan(span, err) }()

	return getChallenge(ctx, c.client, challengeKey(kind, email))
}

func (c *Cache) Save(ctx context.Context, ch entity.Challenge, keep time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "SaveChallenge")
	defer func() { c.endSpan(span, err) }()

	raw, err := json.Marshal(ch)
	if err != nil {
		return err
	}

	err = c.client.Set(ctx, challengeKey(ch.Kind, ch.Email), raw, keep).Err()
	return err
}

func (c *Cache) Delete(ctx context.Context, kind entity.ChallengeKind, email string) (err error) {
	ctx, span := c.startSpan(ctx, "DeleteChallenge")
	defer func() { c.endSpan(span, err) }()

	err = c.client.Del(ctx, challengeKey(kind, email)).Err()
	return err
}

// Discard deletes the challenge only while it still holds codeHash.
func (c *Cache) Discard(ctx context.Context, kind entity.ChallengeKind, email, codeHash string) (err error) {
	ctx, span := c.startSpan(ctx, "DiscardChallenge")
	defer func() { c.endSpan(span, err) }()

	key := challengeKey(kind, email)
	err = c.watch(ctx, key, func(tx *redis.Tx) error {
		ch, err := getChallenge(ctx, tx, key)
		if errors.Is(err, goerror.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if ch.CodeHash != codeHash {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	})
	return err
}

// AddAttempt increments the attempt counter of the challenge holding
// codeHash, keeping its TTL. The challenge is deleted once limit (> 0) is
// reached.
func (c *Cache) AddAttempt(ctx context.Context, kind entity.ChallengeKind, email, codeHash string, limit int) (attempts int, err error) {
	ctx, span := c.startSpan(ctx, "AddChallengeAttempt")
	defer func() { c.endSpan(span, err) }()

	key := challengeKey(kind, email)
	err = c.watch(ctx, key, func(tx *redis.Tx) error {
		ch, err := getChallenge(ctx, tx, key)
		if err != nil {
			return err
		}
		if ch.CodeHash != codeHash {
			return goerror.ErrNotFound
		}

		ch.Attempts++
		raw, err := json.Marshal(ch)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if limit > 0 && ch.Attempts >= limit {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, raw, redis.KeepTTL)
			return nil
		})
		if err == nil {
			attempts = ch.Attempts
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	return attempts, nil
}

// watch runs fn in an optimistic transaction on key, retrying when another
// client changed the key first.
func (c *Cache) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	var err error
	for range maxWatchRetries {
		err = c.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getChallenge(ctx context.Context, cmd getter, key string) (*entity.Challenge, error) {
	raw, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var ch entity.Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, err
	}

	return &ch, nil
}

// RevokeToken marks jti revoked until the token would have expired anyway.
func (c *Cache) RevokeToken(ctx context.Context, jti string, until time.Time) (err error) {
	ctx, span := c.startSpan(ctx, "RevokeToken")
	defer func() { c.endSpan(span, err) }()

	ttl := until.Sub(c.clock.Now())
	if ttl <= 0 {
		return nil
	}

	err = c.client.Set(ctx, prefixRevoked+jti, 1, ttl).Err()
	return err
}

func (c *Cache) IsTokenRevoked(ctx context.Context, jti string) (_ bool, err error) {
	ctx, span := c.startSpan(ctx, "IsTokenRevoked")
	defer func() { c.endSpan(span, err) }()

	n, err := c.client.Exists(ctx, prefixRevoked+jti).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
