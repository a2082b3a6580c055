package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/Tubbz-alt/arxiv-auth/internal/cache"
	"github.com/Tubbz-alt/arxiv-auth/internal/models"
	"github.com/Tubbz-alt/arxiv-auth/internal/store"
)

const (
	// CookieSessionID is the cookie session key holding the session ID.
	CookieSessionID = "session_id"

	// ContextSession is the gin context key the resolved session is stored under.
	ContextSession = "session"
)

// SessionLoader resolves the caller's session from the cookie session or a
// bearer token and stores it in the request context. Requests without a
// valid session pass through with no session set; handlers that require one
// enforce that themselves.
func SessionLoader(st *store.Store, sessionCache cache.Cache[models.Session], ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessionIDFromRequest(c)
		if sessionID == "" {
			c.Next()
			return
		}

		sess, err := cache.GetWithFetch(c.Request.Context(), sessionCache, sessionID, ttl,
			func(ctx context.Context, key string) (models.Session, error) {
				loaded, err := st.GetSession(ctx, key)
				if err != nil {
					return models.Session{}, err
				}
				return *loaded, nil
			})
		if err != nil || sess.IsExpired() {
			c.Next()
			return
		}

		c.Set(ContextSession, &sess)
		c.Next()
	}
}

// CurrentSession returns the session resolved by SessionLoader, if any.
func CurrentSession(c *gin.Context) *models.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	sess, ok := v.(*models.Session)
	if !ok {
		return nil
	}
	return sess
}

func sessionIDFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	cookie := sessions.Default(c)
	if v, ok := cookie.Get(CookieSessionID).(string); ok {
		return v
	}
	return ""
}
