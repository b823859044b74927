package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestPassword returns the hex SHA-256 digest of a room password.
// The store persists this digest and the registry compares against it at
// join time, so both sides must use this exact function.
func DigestPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
