package core

import "errors"

var (
	// ErrAdminNotConfigured means no admin password hash was provisioned.
	ErrAdminNotConfigured = errors.New("admin not configured")
	// ErrTOTPNotConfigured means no TOTP secret was provisioned.
	ErrTOTPNotConfigured = errors.New("totp not configured")
)

// Secrets supplies the provisioned admin secrets. ok is false when a value is absent.
type Secrets interface {
	AdminPasswordHash() (string, bool)
	TOTPSecret() (string, bool)
}

// StaticSecrets serves secrets loaded once at startup.
type StaticSecrets struct {
	PasswordHash string
	Secret       string
}

// SecretsFromConfig returns the secrets carried by cfg.
func SecretsFromConfig(cfg Config) StaticSecrets {
	return StaticSecrets{PasswordHash: cfg.AdminPasswordHash, Secret: cfg.TOTPSecret}
}

func (s StaticSecrets) AdminPasswordHash() (string, bool) {
	return s.PasswordHash, s.PasswordHash != ""
}

func (s StaticSecrets) TOTPSecret() (string, bool) {
	return s.Secret, s.Secret != ""
}
