package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestCredentialStore() *CredentialStore {
	s := NewCredentialStore("test-pepper")
	s.cost = bcrypt.MinCost
	return s
}

func TestCredentialStore_RoundTrip(t *testing.T) {
	s := newTestCredentialStore()

	for _, password := range []string{"password123", "Ünïcödé-pässwörd", string(make([]byte, 100))} {
		hash, err := s.HashPassword(password)
		require.NoError(t, err)
		assert.True(t, s.CheckPassword(password, hash))
		assert.False(t, s.CheckPassword(password+"x", hash))
	}
}

func TestCredentialStore_Salted(t *testing.T) {
	s := newTestCredentialStore()

	h1, err := s.HashPassword("password123")
	require.NoError(t, err)
	h2, err := s.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCredentialStore_PepperMatters(t *testing.T) {
	s := newTestCredentialStore()
	other := NewCredentialStore("other-pepper")

	hash, err := s.HashPassword("password123")
	require.NoError(t, err)
	assert.False(t, other.CheckPassword("password123", hash))
}

func TestCredentialStore_MalformedHash(t *testing.T) {
	s := newTestCredentialStore()
	assert.NotPanics(t, func() {
		assert.False(t, s.CheckPassword("password123", "not-a-bcrypt-hash"))
		assert.False(t, s.CheckPassword("password123", ""))
	})
}

func TestCredentialStore_EmptyPassword(t *testing.T) {
	_, err := newTestCredentialStore().HashPassword("")
	assert.Error(t, err)
}
