package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/auth-service/internal"
)

// LegacyHasher reproduces the digest format of the rows already in the
// users table: a single unsalted SHA-256 over the UTF-8 bytes of the
// password, base64 encoded, compared as plain strings. No per-user salt,
// no work factor, no constant-time compare. Do not change this without a
// dual-verification migration; BcryptHasher is that migration.
type LegacyHasher struct{}

func (LegacyHasher) Hash(plaintext string) (string, error) {
	sum := sha256.Sum256([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func (h LegacyHasher) Verify(plaintext, digest string) (bool, bool) {
	computed, _ := h.Hash(plaintext)
	return computed == digest, false
}

// BcryptHasher is the opt-in hardened scheme. New digests are bcrypt;
// verification falls back to the legacy digest format and asks the caller
// to re-hash on success, so stored credentials migrate on login.
type BcryptHasher struct {
	cost   int
	legacy LegacyHasher
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(plaintext, digest string) (bool, bool) {
	if strings.HasPrefix(digest, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
		return err == nil, false
	}

	// legacy digest on file; verified means it is safe to upgrade
	ok, _ := h.legacy.Verify(plaintext, digest)
	return ok, ok
}

// NewHasher picks the hasher for the configured password scheme. The
// default stays legacy for digest compatibility with existing rows.
func NewHasher(scheme string, bcryptCost int) PasswordHasher {
	if scheme == internal.PasswordSchemeBcrypt {
		return NewBcryptHasher(bcryptCost)
	}
	return LegacyHasher{}
}
