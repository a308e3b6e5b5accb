package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultBcryptCost = 12
	maxPasswordBytes  = 72
)

// PasswordHasher is the one-way, salted credential transform. The salt is
// embedded in each hash, so hashes must be compared with Verify.
type PasswordHasher struct {
	cost      int
	dummyHash []byte
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-unknown-users"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &PasswordHasher{cost: cost, dummyHash: dummy}, nil
}

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrValidationFailed
		}
		return "", err
	}
	return string(hash), nil
}

// Verify compares in constant time; a malformed stored hash never matches.
func (h *PasswordHasher) Verify(plaintext, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}

// DummyVerify spends the same work as Verify so unknown usernames cannot be
// told apart from wrong passwords by response time.
func (h *PasswordHasher) DummyVerify(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(plaintext))
}
