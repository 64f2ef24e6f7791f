package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

func TestManager_RunsDetachedFromCancellation(t *testing.T) {
	// Arrange
	m := NewManager(2)
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "cid-1"))
	cancel()

	var got atomic.Value

	// Act
	started := m.Go(ctx, "publish", func(ctx context.Context) error {
		got.Store(ctx.Value(ctxKey{}))
		return ctx.Err()
	})

	// Assert
	assert.True(t, started)
	assert.NoError(t, m.Wait())
	assert.Equal(t, "cid-1", got.Load())
}

func TestManager_CollectsErrorsAndRecovers(t *testing.T) {
	m := NewManager(4)
	boom := errors.New("boom")

	m.Go(context.Background(), "fail", func(context.Context) error { return boom })
	m.Go(context.Background(), "panic", func(context.Context) error { panic("oops") })

	assert.ErrorIs(t, m.Wait(), boom)
}

func TestManager_RejectsAfterWaitAndWhenFull(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})

	assert.True(t, m.Go(context.Background(), "block", func(context.Context) error {
		<-release
		return nil
	}))
	assert.False(t, m.Go(context.Background(), "overflow", func(context.Context) error { return nil }))

	close(release)
	assert.NoError(t, m.Wait())
	assert.False(t, m.Go(context.Background(), "late", func(context.Context) error { return nil }))
}

func TestManager_NilIsSafe(t *testing.T) {
	var m *Manager

	assert.False(t, m.Go(context.Background(), "x", func(context.Context) error { return nil }))
	assert.NoError(t, m.Wait())
}
