package core

import (
	"strings"
	"time"
)

// Store key prefixes and lifetimes for the login flow.
const (
	PendingKeyPrefix = "totp_pending:"
	SessionKeyPrefix = "session:"
	// PendingTokenTTL bounds the time between a password check and its TOTP step.
	PendingTokenTTL = 300 * time.Second
	SessionTTL      = 24 * time.Hour
)

func pendingKey(token string) string { return PendingKeyPrefix + token }

func sessionKey(token string) string { return SessionKeyPrefix + token }

// keyNamespace returns the prefix of key so secrets embedded in it stay out of logs.
func keyNamespace(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i+1] + "…"
	}
	return key
}
