package identity

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const visiblePrefix = 3

type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{
		cost: cost,
	}
}

// Hash returns a salted bcrypt hash. Two calls with the same input never
// return the same string, so hashes must be compared with Verify.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return string(hash), nil
}

func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Mask keeps the first three characters and stars out the rest.
// Values of three characters or fewer are returned as is.
func Mask(plaintext string) string {
	n := utf8.RuneCountInString(plaintext)
	if n <= visiblePrefix {
		return plaintext
	}

	runes := []rune(plaintext)

	return string(runes[:visiblePrefix]) + strings.Repeat("*", n-visiblePrefix)
}
