package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// CredentialStore hashes and checks passwords. The pepper is applied with
// HMAC-SHA256 before bcrypt, which also keeps long passwords under bcrypt's 72-byte limit.
type CredentialStore struct {
	pepper []byte
	cost   int
}

// NewCredentialStore creates a store using bcrypt.DefaultCost.
func NewCredentialStore(pepper string) *CredentialStore {
	return &CredentialStore{pepper: []byte(pepper), cost: bcrypt.DefaultCost}
}

func (s *CredentialStore) applyPepper(password string) []byte {
	h := hmac.New(sha256.New, s.pepper)
	h.Write([]byte(password))
	return h.Sum(nil)
}

// HashPassword returns a salted bcrypt hash; two calls never return the same string.
func (s *CredentialStore) HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword(s.applyPepper(password), s.cost)
	return string(hash), err
}

// CheckPassword reports whether password matches hash. A malformed hash is a mismatch.
func (s *CredentialStore) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), s.applyPepper(password)) == nil
}
