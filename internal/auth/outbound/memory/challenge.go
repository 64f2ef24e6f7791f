package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type challengeKey struct {
	kind  entity.ChallengeKind
	email string
}

type challengeEntry struct {
	c       entity.Challenge
	evictAt time.Time
}

// Challenges is an in-memory challenge store. Entries past their keep window
// are dropped lazily on access and on every save.
type Challenges struct {
	mu      sync.Mutex
	clock   clock.Clocker
	entries map[challengeKey]challengeEntry
}

func NewChallenges(clk clock.Clocker) *Challenges {
	return &Challenges{clock: clk, entries: make(map[challengeKey]challengeEntry)}
}

func (s *Challenges) Get(_ context.Context, kind entity.ChallengeKind, email string) (*entity.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey{kind: kind, email: email}
	e, ok := s.entries[key]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	if !s.clock.Now().Before(e.evictAt) {
		delete(s.entries, key)
		return nil, goerror.ErrNotFound
	}

	c := cloneChallenge(e.c)
	return &c, nil
}

func (s *Challenges) Save(_ context.Context, c entity.Challenge, keep time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for k, e := range s.entries {
		if !now.Before(e.evictAt) {
			delete(s.entries, k)
		}
	}

	s.entries[challengeKey{kind: c.Kind, email: c.Email}] = challengeEntry{c: cloneChallenge(c), evictAt: now.Add(keep)}

	return nil
}

func (s *Challenges) Delete(_ context.Context, kind entity.ChallengeKind, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, challengeKey{kind: kind, email: email})

	return nil
}

func (s *Challenges) Discard(_ context.Context, kind entity.ChallengeKind, email, codeHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey{kind: kind, email: email}
	if e, ok := s.entries[key]; ok && e.c.CodeHash == codeHash {
		delete(s.entries, key)
	}

	return nil
}

func (s *Challenges) AddAttempt(_ context.Context, kind entity.ChallengeKind, email, codeHash string, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey{kind: kind, email: email}
	e, ok := s.entries[key]
	if !ok || !s.clock.Now().Before(e.evictAt) || e.c.CodeHash != codeHash {
		return 0, goerror.ErrNotFound
	}

	e.c.Attempts++
	if limit > 0 && e.c.Attempts >= limit {
		delete(s.entries, key)
		return e.c.Attempts, nil
	}
	s.entries[key] = e

	return e.c.Attempts, nil
}

// Len returns the number of stored entries, including ones due for eviction.
func (s *Challenges) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func cloneChallenge(c entity.Challenge) entity.Challenge {
	if c.Registration != nil {
		reg := *c.Registration
		c.Registration = &reg
	}
	return c
}
