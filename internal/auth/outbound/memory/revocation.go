package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
)

// Revocations is an in-memory token revocation list keyed by token id.
type Revocations struct {
	mu    sync.Mutex
	clock clock.Clocker
	until map[string]time.Time
}

func NewRevocations(clk clock.Clocker) *Revocations {
	return &Revocations{clock: clk, until: make(map[string]time.Time)}
}

func (r *Revocations) RevokeToken(_ context.Context, jti string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	for id, t := range r.until {
		if !now.Before(t) {
			delete(r.until, id)
		}
	}

	if now.Before(until) {
		r.until[jti] = until
	}

	return nil
}

func (r *Revocations) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.until[jti]
	if !ok {
		return false, nil
	}
	if !r.clock.Now().Before(t) {
		delete(r.until, jti)
		return false, nil
	}

	return true, nil
}
