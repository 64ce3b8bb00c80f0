package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of pending and session tokens (256 bits).
const tokenBytes = 32

// NewToken returns a hex-encoded token read from crypto/rand.
// There is no fallback source: a read failure is returned to the caller.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
