package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory()

	require.NoError(t, d.CreateUser(ctx, entity.User{ID: 1, Name: "Ann", Email: "ann@x.io"}))
	require.NoError(t, d.CreateUser(ctx, entity.User{ID: 2, Name: "Bob", Email: "bob@x.io"}))
	assert.ErrorIs(t, d.CreateUser(ctx, entity.User{ID: 3, Email: "ann@x.io"}), goerror.ErrConflict)

	_, err := d.GetUserByEmail(ctx, "ANN@x.io")
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	_, err = d.UpdateProfile(ctx, 1, entity.Profile{Name: "Ann", Email: "bob@x.io"})
	assert.ErrorIs(t, err, goerror.ErrConflict)

	u, err := d.UpdateProfile(ctx, 1, entity.Profile{Name: "Anna", Email: "anna@x.io", Phone: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", u.Name)

	_, err = d.GetUserByEmail(ctx, "ann@x.io")
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	got, err := d.GetUserByEmail(ctx, "anna@x.io")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	_, err = d.UpdateProfile(ctx, 99, entity.Profile{Email: "z@x.io"})
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestChallenges(t *testing.T) {
	// Arrange
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	s := NewChallenges(clk)
	reg := &entity.Registration{Name: "Ann"}

	// Act
	require.NoError(t, s.Save(ctx, entity.Challenge{Kind: entity.ChallengeKindRegistration, Email: "a@x.io", CodeHash: "h1", Registration: reg}, 30*time.Minute))
	reg.Name = "mutated"

	// Assert
	got, err := s.Get(ctx, entity.ChallengeKindRegistration, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Registration.Name)

	_, err = s.Get(ctx, entity.ChallengeKindLogout, "a@x.io")
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	clk.Advance(30 * time.Minute)
	_, err = s.Get(ctx, entity.ChallengeKindRegistration, "a@x.io")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestChallenges_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewChallenges(clock.NewManual(time.Now()))

	require.NoError(t, s.Save(ctx, entity.Challenge{Kind: entity.ChallengeKindLogout, Email: "a@x.io", CodeHash: "old"}, time.Hour))
	require.NoError(t, s.Save(ctx, entity.Challenge{Kind: entity.ChallengeKindLogout, Email: "a@x.io", CodeHash: "new"}, time.Hour))

	got, err := s.Get(ctx, entity.ChallengeKindLogout, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "new", got.CodeHash)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, entity.ChallengeKindLogout, "a@x.io"))
	assert.Zero(t, s.Len())
}

func TestRevocations(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	r := NewRevocations(clk)

	require.NoError(t, r.RevokeToken(ctx, "jti-1", clk.Now().Add(time.Hour)))
	require.NoError(t, r.RevokeToken(ctx, "jti-old", clk.Now().Add(-time.Second)))

	revoked, err := r.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = r.IsTokenRevoked(ctx, "jti-old")
	assert.False(t, revoked)

	clk.Advance(time.Hour)
	revoked, _ = r.IsTokenRevoked(ctx, "jti-1")
	assert.False(t, revoked)
}

func TestChallenges_AddAttempt(t *testing.T) {
	ctx := context.Background()
	s := NewChallenges(clock.NewManual(time.Now()))
	require.NoError(t, s.Save(ctx, entity.Challenge{Kind: entity.ChallengeKindLogout, Email: "a@x.io", CodeHash: "h1"}, time.Hour))

	n, err := s.AddAttempt(ctx, entity.ChallengeKindLogout, "a@x.io", "h1", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.AddAttempt(ctx, entity.ChallengeKindLogout, "a@x.io", "stale", 3)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	got, err := s.Get(ctx, entity.ChallengeKindLogout, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)

	n, err = s.AddAttempt(ctx, entity.ChallengeKindLogout, "a@x.io", "h1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.AddAttempt(ctx, entity.ChallengeKindLogout, "a@x.io", "h1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Zero(t, s.Len())
}

func TestChallenges_DiscardKeepsNewerCode(t *testing.T) {
	ctx := context.Background()
	s := NewChallenges(clock.NewManual(time.Now()))
	require.NoError(t, s.Save(ctx, entity.Challenge{Kind: entity.ChallengeKindRegistration, Email: "a@x.io", CodeHash: "new"}, time.Hour))

	require.NoError(t, s.Discard(ctx, entity.ChallengeKindRegistration, "a@x.io", "old"))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Discard(ctx, entity.ChallengeKindRegistration, "a@x.io", "new"))
	assert.Zero(t, s.Len())
}
