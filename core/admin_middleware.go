package core

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminSessionCtxKey = "adminSession"

// SessionGuard authorizes requests carrying a session token in the Authorization header.
// Liveness is whatever the Store says: expires_at is informational and not re-checked.
type SessionGuard struct {
	store Store
}

func NewSessionGuard(store Store) *SessionGuard {
	return &SessionGuard{store: store}
}

// Authorize reports whether r carries a token with a stored session.
func (g *SessionGuard) Authorize(r *http.Request) bool {
	_, ok := g.Lookup(r.Context(), r.Header.Get("Authorization"))
	return ok
}

// Lookup resolves an Authorization header value to its session. Store errors deny access.
func (g *SessionGuard) Lookup(ctx context.Context, header string) (*Session, bool) {
	token := BearerToken(header)
	if token == "" {
		return nil, false
	}
	var sess Session
	found, err := g.store.Get(ctx, sessionKey(token), &sess)
	if err != nil {
		log.Printf("[auth] session lookup failed: %v", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &sess, true
}

// BearerToken strips a "Bearer " prefix; a header without it is used as-is.
func BearerToken(header string) string {
	return strings.TrimPrefix(header, "Bearer ")
}

// RequireAdminSession rejects requests without a live admin session and exposes the
// session to handlers via adminSessionFrom.
func RequireAdminSession(guard *SessionGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guard.Lookup(c.Request.Context(), c.GetHeader("Authorization"))
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			c.Abort()
			return
		}
		c.Set(adminSessionCtxKey, sess)
		c.Next()
	}
}

func adminSessionFrom(c *gin.Context) *Session {
	v, _ := c.Get(adminSessionCtxKey)
	sess, _ := v.(*Session)
	return sess
}
