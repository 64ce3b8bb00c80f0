package core

import (
	"context"
	"fmt"
	"log"
	"time"
)

// LoginService drives the two-phase admin login:
// AwaitingPassword -> AwaitingTotp (pending token stored) -> Authenticated (session stored).
// The phase is never tracked in memory; the presence of keys in the Store is the state.
type LoginService struct {
	store    Store
	secrets  Secrets
	verifier *TOTPVerifier
	username string
	now      func() time.Time
	newToken func() (string, error)
}

// LoginOption customises a LoginService.
type LoginOption func(*LoginService)

// WithClock replaces time.Now for session timestamps and TOTP steps.
func WithClock(now func() time.Time) LoginOption {
	return func(s *LoginService) { s.now = now }
}

// WithTokenSource replaces NewToken.
func WithTokenSource(gen func() (string, error)) LoginOption {
	return func(s *LoginService) { s.newToken = gen }
}

// NewLoginService wires the login flow. username is the single admin principal.
func NewLoginService(store Store, secrets Secrets, username string, opts ...LoginOption) *LoginService {
	if username == "" {
		username = DefaultAdminUsername
	}
	s := &LoginService{
		store:    store,
		secrets:  secrets,
		username: username,
		now:      time.Now,
		newToken: NewToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.verifier = NewTOTPVerifier(s.now)
	return s
}

// SubmitPassword checks the credentials and, on success, issues a pending token valid for
// PendingTokenTTL. A wrong username or password yields an unsuccessful result, not an error;
// errors are reserved for missing configuration and store failures.
func (s *LoginService) SubmitPassword(ctx context.Context, username, password string) (LoginResult, error) {
	hash, ok := s.secrets.AdminPasswordHash()
	if !ok {
		return LoginResult{}, ErrAdminNotConfigured
	}

	cred := Credential{Username: s.username, PasswordHash: hash}
	if !cred.Matches(username, password) {
		return LoginResult{Success: false, Message: MsgInvalidCredentials}, nil
	}

	token, err := s.newToken()
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.store.Put(ctx, pendingKey(token), true, PendingTokenTTL); err != nil {
		return LoginResult{}, fmt.Errorf("store pending token: %w", err)
	}

	return LoginResult{
		Success:      true,
		Message:      MsgPasswordVerified,
		Token:        &token,
		RequiresTOTP: true,
	}, nil
}

// SubmitTOTP completes a login started by SubmitPassword. A wrong code leaves the pending
// token in place so the caller can retry until it expires. On success the pending token is
// consumed and a session token valid for SessionTTL is returned. ip is recorded on the session.
func (s *LoginService) SubmitTOTP(ctx context.Context, pendingToken, code, ip string) (TOTPResult, error) {
	if pendingToken == "" {
		return TOTPResult{Valid: false, Message: MsgMissingToken}, nil
	}

	var marker bool
	found, err := s.store.Get(ctx, pendingKey(pendingToken), &marker)
	if err != nil {
		return TOTPResult{}, fmt.Errorf("load pending token: %w", err)
	}
	if !found {
		return TOTPResult{Valid: false, Message: MsgSessionExpired}, nil
	}

	secret, ok := s.secrets.TOTPSecret()
	if !ok {
		return TOTPResult{}, ErrTOTPNotConfigured
	}
	if !s.verifier.Verify(secret, code) {
		return TOTPResult{Valid: false, Message: MsgInvalidCode}, nil
	}

	sessionToken, err := s.newToken()
	if err != nil {
		return TOTPResult{}, err
	}
	now := s.now().UTC()
	sess := Session{
		UserID:    s.username,
		Username:  s.username,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
		IPAddress: ip,
	}
	if err := s.store.Put(ctx, sessionKey(sessionToken), sess, SessionTTL); err != nil {
		return TOTPResult{}, fmt.Errorf("store session: %w", err)
	}
	if err := s.store.Delete(ctx, pendingKey(pendingToken)); err != nil {
		log.Printf("[auth] failed to delete pending token: %v", err)
	}

	return TOTPResult{
		Valid:        true,
		Message:      MsgLoginSuccessful,
		SessionToken: &sessionToken,
	}, nil
}

// Logout removes the session stored under sessionToken.
func (s *LoginService) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	return s.store.Delete(ctx, sessionKey(sessionToken))
}
