package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "auth-service/pkg/errors"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("Abcd1234")
	require.NoError(t, err)
	require.NotEqual(t, "Abcd1234", digest)

	ok, err := CheckPassword(digest, "Abcd1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(digest, "Abcd1235")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPassword_CorruptDigest(t *testing.T) {
	t.Parallel()

	_, err := CheckPassword("not-a-bcrypt-digest", "whatever")
	assert.ErrorIs(t, err, appErrors.ErrCorruptCredential)
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("Abcd1234")
	require.NoError(t, err)
	second, err := HashPassword("Abcd1234")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ by salt")
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Abcd1234", false},
		{"valid long", "CorrectHorse99", false},
		{"too short", "Ab1cdef", true},
		{"no uppercase", "abcd1234", true},
		{"no lowercase", "ABCD1234", true},
		{"no digit", "Abcdefgh", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
