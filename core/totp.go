package core

import (
	"crypto/subtle"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP parameters (RFC 6238 defaults as used by authenticator apps).
const (
	TOTPPeriod = 30 // seconds per time step
	TOTPSkew   = 1  // steps accepted on either side of the current one
)

var totpOpts = totp.ValidateOpts{
	Period:    TOTPPeriod,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TOTPVerifier checks 6-digit HMAC-SHA1 codes against a base32 secret.
// It keeps no state between calls; a code stays reusable within its window.
type TOTPVerifier struct {
	now func() time.Time
}

// NewTOTPVerifier returns a verifier reading the given clock; nil means time.Now.
func NewTOTPVerifier(now func() time.Time) *TOTPVerifier {
	if now == nil {
		now = time.Now
	}
	return &TOTPVerifier{now: now}
}

// Verify reports whether code matches secret at the current step or one step either side.
func (v *TOTPVerifier) Verify(secret, code string) bool {
	return VerifyTOTPAt(secret, code, v.now())
}

// VerifyTOTPAt is Verify against an explicit instant.
// A secret that is not valid base32 never matches.
func VerifyTOTPAt(secret, code string, t time.Time) bool {
	for offset := -TOTPSkew; offset <= TOTPSkew; offset++ {
		at := t.Add(time.Duration(offset) * TOTPPeriod * time.Second)
		expected, err := GenerateTOTPAt(secret, at)
		if err != nil {
			return false
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

// GenerateTOTPAt returns the zero-padded 6-digit code for the step containing t.
func GenerateTOTPAt(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t, totpOpts)
}
