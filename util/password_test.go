package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPasswordArgon2_RoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	assert.NoError(t, err)

	hashed, err := HashPasswordArgon2("swordfish", salt)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "argon2id$"))

	assert.True(t, VerifyPassword("swordfish", hashed))
	assert.False(t, VerifyPassword("marlin", hashed))
}

func TestHashPasswordArgon2_SaltChangesHash(t *testing.T) {
	saltA, err := GenerateSalt()
	assert.NoError(t, err)
	saltB, err := GenerateSalt()
	assert.NoError(t, err)
	assert.NotEqual(t, saltA, saltB)

	hashA, err := HashPasswordArgon2("swordfish", saltA)
	assert.NoError(t, err)
	hashB, err := HashPasswordArgon2("swordfish", saltB)
	assert.NoError(t, err)
	assert.NotEqual(t, hashA, hashB)
}

func TestVerifyPassword_MalformedStoredValue(t *testing.T) {
	assert.False(t, VerifyPassword("swordfish", ""))
	assert.False(t, VerifyPassword("swordfish", "plaintext"))
	assert.False(t, VerifyPassword("swordfish", "bcrypt$abc$def"))
}

func TestJWTSecret_SetAndGet(t *testing.T) {
	SetJWTSecret("first")
	assert.Equal(t, []byte("first"), GetJWTSecretByte())

	SetJWTSecret("second")
	assert.Equal(t, []byte("second"), GetJWTSecretByte())

	// The returned slice is a copy; mutating it must not affect the secret.
	b := GetJWTSecretByte()
	b[0] = 'X'
	assert.Equal(t, []byte("second"), GetJWTSecretByte())
}
