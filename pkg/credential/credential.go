package credential

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// Key-derivation parameters. Changing any of these invalidates every stored
// credential, so they are constants rather than configuration.
const (
	saltBytes  = 16
	iterations = 1000
	keyBytes   = 64
)

// NewSalt returns a fresh random salt as a hex string. Each identity gets its
// own salt; salts are never reused.
func NewSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Derive computes the stored hash for a password and salt using
// PBKDF2-SHA512. Deterministic and pure; the iteration count is what makes
// offline guessing expensive.
func Derive(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyBytes, sha512.New)
	return hex.EncodeToString(key)
}

// Verify recomputes the derivation and compares it against the expected hash
// in constant time.
func Verify(password, salt, expectedHash string) bool {
	derived := Derive(password, salt)
	return hmac.Equal([]byte(derived), []byte(expectedHash))
}
