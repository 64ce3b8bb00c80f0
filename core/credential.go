package core

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultAdminUsername is the admin principal when none is configured.
const DefaultAdminUsername = "admin"

// Credential is the single configured admin identity.
type Credential struct {
	Username     string
	PasswordHash string
}

// Matches compares username and password against c. Both comparisons always run so the
// outcome and timing do not reveal which field was wrong.
func (c Credential) Matches(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username))
	passOK := 0
	if passwordMatches(c.PasswordHash, password) {
		passOK = 1
	}
	return userOK&passOK == 1
}

// LegacyPasswordHash returns the unsalted hex SHA-1 digest accepted for older deployments.
func LegacyPasswordHash(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

func passwordMatches(stored, password string) bool {
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	computed := LegacyPasswordHash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(stored))) == 1
}
