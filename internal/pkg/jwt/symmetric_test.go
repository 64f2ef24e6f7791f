package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type seqID struct{ n int }

func (s *seqID) Generate() string {
	s.n++
	return "jti-" + strings.Repeat("x", s.n)
}

var secret = []byte(strings.Repeat("k", 64))

func newTestJWT(t *testing.T, clk *fakeClock) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:    secret,
		Issuer:    "otpgate",
		Audiences: []string{"otpgate-client"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      &seqID{},
	})
	require.NoError(t, err)
	return j
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	// Arrange
	clk := &fakeClock{now: time.Now().Truncate(time.Second)}
	j := newTestJWT(t, clk)

	// Act
	token, err := j.Generate(42, "a@x.com")
	require.NoError(t, err)
	claims, err := j.Verify(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.UserEmail)
	assert.Equal(t, "jti-x", claims.TokenID())
	assert.Equal(t, clk.now.Add(time.Hour), claims.Expiry())
}

func TestSymmetric_TokensAreDistinct(t *testing.T) {
	j := newTestJWT(t, &fakeClock{now: time.Now()})

	a, err := j.Generate(1, "a@x.com")
	require.NoError(t, err)
	b, err := j.Generate(1, "a@x.com")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSymmetric_Verify_Expired(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	j := newTestJWT(t, clk)

	token, err := j.Generate(1, "a@x.com")
	require.NoError(t, err)

	clk.now = clk.now.Add(2 * time.Hour)
	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSymmetric_Verify_Tampered(t *testing.T) {
	j := newTestJWT(t, &fakeClock{now: time.Now()})

	token, err := j.Generate(1, "a@x.com")
	require.NoError(t, err)

	_, err = j.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = j.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewHS512_Validation(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short"), Clock: &fakeClock{}, UUID: &seqID{}})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)

	_, err = NewHS512(Config{Secret: secret})
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestExtractBearer(t *testing.T) {
	tok, ok := ExtractBearer("bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = ExtractBearer("Basic abc")
	assert.False(t, ok)

	_, ok = ExtractBearer("Bearer ")
	assert.False(t, ok)
}

func TestAuthContext(t *testing.T) {
	assert.Nil(t, GetAuth(context.Background()))

	ctx := SetAuth(context.Background(), Claims{UserID: 7})
	require.NotNil(t, GetAuth(ctx))
	assert.Equal(t, int64(7), GetAuth(ctx).UserID)
}
