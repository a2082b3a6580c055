package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tubbz-alt/arxiv-auth/internal/cache"
	"github.com/Tubbz-alt/arxiv-auth/internal/models"
	"github.com/Tubbz-alt/arxiv-auth/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRouter(t *testing.T) (*gin.Engine, *store.Store, cache.Cache[models.Session]) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)

	sessionCache := cache.NewMemoryCache[models.Session]()

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	r.Use(SessionLoader(st, sessionCache, time.Minute))
	r.GET("/whoami", func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": sess.UserID})
	})
	return r, st, sessionCache
}

func seedSession(t *testing.T, st *store.Store, expiresAt time.Time) *models.Session {
	t.Helper()
	sess := &models.Session{
		SessionID: uuid.NewString(),
		Scopes:    "profile:read",
		UserID:    "user-1",
		Username:  "jdoe",
		StartedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	require.NoError(t, st.CreateSession(context.Background(), sess))
	return sess
}

func TestSessionLoaderBearerToken(t *testing.T) {
	r, st, _ := newSessionRouter(t)
	sess := seedSession(t, st, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+sess.SessionID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestSessionLoaderUnknownToken(t *testing.T) {
	r, _, _ := newSessionRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionLoaderNoCredentials(t *testing.T) {
	r, _, _ := newSessionRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionLoaderExpiredSession(t *testing.T) {
	r, st, _ := newSessionRouter(t)
	sess := seedSession(t, st, time.Now().Add(-time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+sess.SessionID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionLoaderCaches(t *testing.T) {
	r, st, sessionCache := newSessionRouter(t)
	sess := seedSession(t, st, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+sess.SessionID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// The session landed in the cache on first resolution.
	cached, err := sessionCache.Get(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, sess.SessionID, cached.SessionID)

	// Delete the row; the cached copy still serves until its TTL lapses.
	require.NoError(t, st.DeleteSession(context.Background(), sess.SessionID))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
