// Package auth hashes and verifies user credentials.
//
// The scheme is PBKDF2-SHA256 with a per-user random salt. Digest and
// salt are stored as lowercase hex so the users table carries only
// printable fixed-length columns.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	keySize    = 32
	iterations = 100_000
)

// HashPassword derives a digest for plaintext under a fresh random salt.
// It returns an error if the random source is unavailable; there is no
// plaintext fallback.
func HashPassword(plaintext string) (digest, salt string, err error) {
	raw := make([]byte, saltSize)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	return hashWithSalt(plaintext, raw), hex.EncodeToString(raw), nil
}

// VerifyPassword reports whether plaintext matches the stored digest.
// The comparison is constant time. A malformed salt verifies as false.
func VerifyPassword(plaintext, digest, salt string) bool {
	raw, err := hex.DecodeString(salt)
	if err != nil {
		return false
	}
	computed := hashWithSalt(plaintext, raw)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

func hashWithSalt(plaintext string, salt []byte) string {
	key := pbkdf2.Key([]byte(plaintext), salt, iterations, keySize, sha256.New)
	return hex.EncodeToString(key)
}
