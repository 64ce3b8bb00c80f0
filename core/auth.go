package core

import (
	"time"
)

// Session is the record stored under session:<token> after a completed two-factor login.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address"`
}

// LoginResult is the outcome of the password step.
type LoginResult struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	Token        *string `json:"token"`
	RequiresTOTP bool    `json:"requires_totp"`
}

// TOTPResult is the outcome of the second-factor step.
type TOTPResult struct {
	Valid        bool    `json:"valid"`
	Message      string  `json:"message"`
	SessionToken *string `json:"session_token"`
}

// User-facing messages. Failures never say which factor or field was wrong beyond these.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgPasswordVerified   = "Password verified. Enter TOTP code."
	MsgMissingToken       = "Missing token"
	MsgSessionExpired     = "Session expired. Please login again."
	MsgInvalidCode        = "Invalid TOTP code"
	MsgLoginSuccessful    = "Login successful"
)
