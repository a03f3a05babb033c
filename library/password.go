package library

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordScheme selects how newly registered secrets are stored.
//
// SchemeSHA256 is the legacy format: an unsalted lowercase hex SHA-256 digest.
// SchemeBcrypt stores a salted bcrypt hash. Verification accepts either
// format, so one database may hold both.
type PasswordScheme string

const (
	SchemeSHA256 PasswordScheme = "sha256"
	SchemeBcrypt PasswordScheme = "bcrypt"
)

// MinPasswordLength is the only password policy enforced.
const MinPasswordLength = 4

// PasswordHasher produces stored digests for new secrets.
type PasswordHasher struct {
	Scheme PasswordScheme
	Cost   int
}

// Hash digests secret according to the configured scheme.
func (h PasswordHasher) Hash(secret string) (string, error) {
	switch h.Scheme {
	case SchemeSHA256, "":
		return sha256Hex(secret), nil
	case SchemeBcrypt:
		cost := h.Cost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		b, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown password scheme %q", h.Scheme)
	}
}

// VerifyPassword reports whether secret matches the stored digest. The
// stored format is recognised from its prefix.
func VerifyPassword(secret, stored string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)) == nil
	}
	want := []byte(strings.ToLower(stored))
	got := []byte(sha256Hex(secret))
	return len(want) == len(got) && subtle.ConstantTimeCompare(want, got) == 1
}

func sha256Hex(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
