package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/Tubbz-alt/arxiv-auth/internal/middleware"
	"github.com/Tubbz-alt/arxiv-auth/internal/services"
)

type AuthHandler struct {
	login *services.LoginService
}

func NewAuthHandler(login *services.LoginService) *AuthHandler {
	return &AuthHandler{login: login}
}

// Login authenticates a resource owner and binds the new session ID to the
// cookie session.
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "username and password are required",
		})
		return
	}

	sess, err := h.login.Login(c.Request.Context(), username, password, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":             "access_denied",
				"error_description": "Invalid username or password",
			})
			return
		}
		log.Printf("[AuthHandler] Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "An unexpected error occurred",
		})
		return
	}

	cookie := sessions.Default(c)
	cookie.Set(middleware.CookieSessionID, sess.SessionID)
	if err := cookie.Save(); err != nil {
		log.Printf("[AuthHandler] Failed to save cookie session: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.SessionID,
		"expires_at": sess.ExpiresAt,
		"scope":      sess.Scopes,
	})
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess != nil {
		if err := h.login.Logout(c.Request.Context(), sess.SessionID); err != nil {
			log.Printf("[AuthHandler] Failed to revoke session %s: %v", sess.SessionID, err)
		}
	}

	cookie := sessions.Default(c)
	cookie.Delete(middleware.CookieSessionID)
	_ = cookie.Save()

	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// Session introspects the caller's session. Serves both browser sessions
// and bearer tokens issued by the token endpoint.
func (h *AuthHandler) Session(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_token",
			"error_description": "No valid session",
		})
		return
	}

	resp := gin.H{
		"session_id": sess.SessionID,
		"scope":      sess.Scopes,
		"started_at": sess.StartedAt,
		"expires_at": sess.ExpiresAt,
	}
	if sess.HasUser() {
		resp["user"] = gin.H{
			"user_id":  sess.UserID,
			"username": sess.Username,
			"email":    sess.UserEmail,
		}
	}
	if sess.ClientID != "" {
		resp["client_id"] = sess.ClientID
	}

	c.JSON(http.StatusOK, resp)
}
