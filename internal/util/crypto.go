package util

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// RandomToken generates an opaque token string carrying `entropy` bytes of
// randomness, rendered as lowercase hex. Used for authorization codes and
// access tokens.
func RandomToken(entropy int) (string, error) {
	buf, err := CryptoRandomBytes(entropy)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SHA256Hex returns the SHA-256 hash of s as a lowercase hex string.
// Client secrets are stored in this form.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEquals compares two strings in constant time. Use this for any
// comparison involving a credential digest to avoid timing side-channels.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
