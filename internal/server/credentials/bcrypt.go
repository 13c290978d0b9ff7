// Package credentials hashes and verifies user passwords with bcrypt.
package credentials

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// ErrMalformedHash is returned by Verify when the stored hash cannot be
// parsed. A plain mismatch is not an error.
var ErrMalformedHash = errors.New("malformed password hash")

// Hasher performs salted one-way password hashing.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given work factor. A cost <= 0
// selects DefaultCost.
func NewHasher(cost int) (*Hasher, error) {
	if cost <= 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns the bcrypt encoding of plaintext. Every call uses a fresh
// salt, so hashing the same password twice yields different strings.
func (h *Hasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash.
func (h *Hasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}
}
