// Package auth hashes and verifies user passwords.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/trailtracker/trailtracker/internal/errors"
)

// DefaultCost is the bcrypt work factor for stored passwords.
const DefaultCost = 10

// ErrPasswordMismatch is returned by CheckPassword when the password does not match the hash.
var ErrPasswordMismatch = errors.NewStd("password does not match")

// Hasher hashes passwords with a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or DefaultCost when cost is out of bcrypt's range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// HashPassword returns the bcrypt hash of password.
func (h *Hasher) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.New(err).
			Component("auth").
			Category(errors.CategoryAuth).
			Context("operation", "hash-password").
			Build()
	}
	return string(hash), nil
}

// CheckPassword compares password with a stored hash. A mismatch returns ErrPasswordMismatch;
// a malformed hash returns an authentication error.
func (h *Hasher) CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return errors.New(err).
			Component("auth").
			Category(errors.CategoryAuth).
			Context("operation", "check-password").
			Build()
	}
}

var defaultHasher = NewHasher(DefaultCost)

// HashPassword hashes password with DefaultCost.
func HashPassword(password string) (string, error) {
	return defaultHasher.HashPassword(password)
}

// CheckPassword verifies password against hash.
func CheckPassword(hash, password string) error {
	return defaultHasher.CheckPassword(hash, password)
}
