//go:build integration

package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("otpgate"),
		postgres.WithUsername("otpgate"),
		postgres.WithPassword("otpgate"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Migrate(ctx, pool))

	return NewDB(pool, instrument.NewNoop())
}

func TestDB_Users(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := newTestDB(t)

	// Act
	require.NoError(t, db.CreateUser(ctx, entity.User{ID: 1, Name: "Ann", Email: "ann@x.io", PasswordHash: "h"}))
	require.NoError(t, db.CreateUser(ctx, entity.User{ID: 2, Name: "Bob", Email: "bob@x.io", PasswordHash: "h"}))

	// Assert
	assert.ErrorIs(t, db.CreateUser(ctx, entity.User{ID: 3, Email: "ann@x.io"}), goerror.ErrConflict)

	_, err := db.GetUserByEmail(ctx, "Ann@x.io")
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	_, err = db.UpdateProfile(ctx, 1, entity.Profile{Name: "Ann", Email: "bob@x.io"})
	assert.ErrorIs(t, err, goerror.ErrConflict)

	u, err := db.UpdateProfile(ctx, 1, entity.Profile{Name: "Anna", Email: "ann@x.io", Phone: "9"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", u.Name)
	assert.Equal(t, "h", u.PasswordHash)

	_, err = db.UpdateProfile(ctx, 42, entity.Profile{Name: "X", Email: "x@x.io"})
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	got, err := db.GetUserByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.io", got.Email)
}
