package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPassword(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		wantType  any
		wantErr   error
	}{
		{name: "default is bcrypt", algorithm: "", wantType: &Bcrypt{}},
		{name: "bcrypt", algorithm: "bcrypt", wantType: &Bcrypt{}},
		{name: "argon2id ignores case", algorithm: " Argon2id ", wantType: &Argon2id{}},
		{name: "unknown", algorithm: "md5", wantErr: ErrUnknownAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPassword(PasswordConfig{Algorithm: tt.algorithm, BcryptCost: 4})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.wantType, got)
		})
	}
}

func TestPasswordHashers_RoundTrip(t *testing.T) {
	hashers := map[string]Hash{
		"bcrypt":   NewBcrypt(4, "pepper"),
		"argon2id": NewArgon2id("pepper"),
	}

	long := strings.Repeat("p", 72)

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			for _, pw := range []string{"secret", long} {
				hashed, err := h.Hash(pw)
				require.NoError(t, err)
				assert.NotContains(t, string(hashed), pw)

				assert.True(t, h.Verify(string(hashed), pw))
				assert.False(t, h.Verify(string(hashed), pw+"x"))
			}
			assert.False(t, h.Verify("", "secret"))
		})
	}
}

func TestBcrypt_PepperMatters(t *testing.T) {
	hashed, err := NewBcrypt(4, "one").Hash("secret")
	require.NoError(t, err)

	assert.False(t, NewBcrypt(4, "two").Verify(string(hashed), "secret"))
}

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("key")

	digest, err := h.Hash("012345")
	require.NoError(t, err)
	again, err := h.Hash("012345")
	require.NoError(t, err)

	assert.Equal(t, digest, again)
	assert.Len(t, digest, 64)
	assert.True(t, h.Verify(string(digest), "012345"))
	assert.False(t, h.Verify(string(digest), "012346"))
	assert.False(t, NewHMACSHA256("other").Verify(string(digest), "012345"))
}
