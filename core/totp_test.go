package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rfcSecret is the RFC 6238 Appendix B SHA-1 seed "12345678901234567890" in base32.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestGenerateTOTPAt_RFC6238Vectors(t *testing.T) {
	// Appendix B values truncated to 6 digits.
	vectors := map[int64]string{
		59:          "287082",
		1111111109:  "081804",
		1111111111:  "050471",
		1234567890:  "005924",
		2000000000:  "279037",
		20000000000: "353130",
	}
	for unix, want := range vectors {
		got, err := GenerateTOTPAt(rfcSecret, time.Unix(unix, 0))
		require.NoError(t, err)
		assert.Equal(t, want, got, "t=%d", unix)
	}
}

func TestVerifyTOTPAt_DriftWindow(t *testing.T) {
	now := time.Unix(1111111111, 0)
	codes := map[int]string{
		-2: "731029",
		-1: "081804",
		0:  "050471",
		1:  "266759",
		2:  "306183",
	}

	assert.True(t, VerifyTOTPAt(rfcSecret, codes[0], now), "current step")
	assert.True(t, VerifyTOTPAt(rfcSecret, codes[-1], now), "previous step")
	assert.True(t, VerifyTOTPAt(rfcSecret, codes[1], now), "next step")
	assert.False(t, VerifyTOTPAt(rfcSecret, codes[-2], now), "two steps back")
	assert.False(t, VerifyTOTPAt(rfcSecret, codes[2], now), "two steps ahead")
}

func TestVerifyTOTPAt_GeneratedCodesAcrossWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	for offset := -2; offset <= 2; offset++ {
		code, err := GenerateTOTPAt(rfcSecret, now.Add(time.Duration(offset)*30*time.Second))
		require.NoError(t, err)
		want := offset >= -1 && offset <= 1
		assert.Equal(t, want, VerifyTOTPAt(rfcSecret, code, now), "offset %d", offset)
	}
}

func TestVerifyTOTPAt_ExactMatchOnly(t *testing.T) {
	now := time.Unix(1111111111, 0)
	for _, code := range []string{"", "50471", " 050471", "050471 ", "0504710", "abcdef"} {
		assert.False(t, VerifyTOTPAt(rfcSecret, code, now), "code %q", code)
	}
}

func TestVerifyTOTPAt_MalformedSecret(t *testing.T) {
	now := time.Unix(1111111111, 0)
	for _, secret := range []string{"not base32!", "01890189", "@@@@", "GEZDGNBV-GY3TQOJQ"} {
		assert.NotPanics(t, func() {
			assert.False(t, VerifyTOTPAt(secret, "050471", now), "secret %q", secret)
		})
	}
}

func TestTOTPVerifier_UsesInjectedClock(t *testing.T) {
	v := NewTOTPVerifier(func() time.Time { return time.Unix(59, 0) })
	assert.True(t, v.Verify(rfcSecret, "287082"))
	assert.False(t, v.Verify(rfcSecret, "050471"))
}
