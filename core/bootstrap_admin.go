package core

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ProvisionOptions controls ProvisionAdmin.
type ProvisionOptions struct {
	Username string
	Password string // empty -> a random password is generated
	Legacy   bool   // emit an unsalted SHA-1 hash instead of bcrypt
	Issuer   string // authenticator app label
}

// AdminProvision carries everything an operator needs to configure the console.
// It is produced offline; the running service only ever reads these values.
type AdminProvision struct {
	Username          string
	Password          string
	GeneratedPassword bool
	PasswordHash      string
	TOTPSecret        string
	TOTPURL           string
}

// ProvisionAdmin hashes the admin password and generates a fresh TOTP secret.
func ProvisionAdmin(opts ProvisionOptions) (AdminProvision, error) {
	username := strings.TrimSpace(opts.Username)
	if username == "" {
		username = DefaultAdminUsername
	}
	issuer := opts.Issuer
	if issuer == "" {
		issuer = "riverdash"
	}

	out := AdminProvision{Username: username, Password: opts.Password}
	if out.Password == "" {
		pw, err := generatePassword(24)
		if err != nil {
			return AdminProvision{}, err
		}
		out.Password = pw
		out.GeneratedPassword = true
	}

	if opts.Legacy {
		out.PasswordHash = LegacyPasswordHash(out.Password)
	} else {
		hash, err := HashPassword(out.Password)
		if err != nil {
			return AdminProvision{}, err
		}
		out.PasswordHash = hash
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: username,
		Period:      TOTPPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return AdminProvision{}, fmt.Errorf("generate totp secret: %w", err)
	}
	out.TOTPSecret = key.Secret()
	out.TOTPURL = key.URL()
	return out, nil
}

// EnvFile renders the provision as environment assignments understood by Load.
func (p AdminProvision) EnvFile() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ADMIN_USERNAME=%s\n", p.Username)
	// single quotes keep the $ separators of bcrypt hashes literal for shells and godotenv
	fmt.Fprintf(&b, "ADMIN_PASSWORD_HASH='%s'\n", p.PasswordHash)
	fmt.Fprintf(&b, "TOTP_SECRET=%s\n", p.TOTPSecret)
	return b.String()
}

// WriteEnvFile writes EnvFile to path readable only by the owner.
func (p AdminProvision) WriteEnvFile(path string) error {
	return os.WriteFile(path, []byte(p.EnvFile()), 0o600)
}

func generatePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}
	// base64 encoding: need 3/4 overhead; ensure enough bytes
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:length], nil
}
