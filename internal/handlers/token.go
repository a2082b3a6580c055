package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tubbz-alt/arxiv-auth/internal/middleware"
	"github.com/Tubbz-alt/arxiv-auth/internal/services"
)

type TokenHandler struct {
	engine *services.GrantEngine
}

func NewTokenHandler(engine *services.GrantEngine) *TokenHandler {
	return &TokenHandler{engine: engine}
}

// Token handles the token endpoint (RFC 6749 section 3.2). Client
// credentials travel in the form body; HTTP Basic authentication is not
// supported and is rejected before any lookup.
func (h *TokenHandler) Token(c *gin.Context) {
	if _, _, ok := c.Request.BasicAuth(); ok {
		c.Header("WWW-Authenticate", `Basic realm="oauth2"`)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_client",
			"error_description": "HTTP Basic authentication is not supported; use client_secret_post",
		})
		return
	}

	req := &services.TokenRequest{
		GrantType:    c.PostForm("grant_type"),
		ClientID:     c.PostForm("client_id"),
		ClientSecret: c.PostForm("client_secret"),
		Code:         c.PostForm("code"),
		RedirectURI:  c.PostForm("redirect_uri"),
		Scope:        c.PostForm("scope"),
		AuthMethod:   services.AuthMethodClientSecretPost,
		RemoteAddr:   c.ClientIP(),
		Session:      middleware.CurrentSession(c),
	}

	if req.GrantType == "" || req.ClientID == "" || req.ClientSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "grant_type, client_id, and client_secret are required",
		})
		return
	}

	resp, err := h.engine.Execute(c.Request.Context(), req)
	if err != nil {
		h.writeTokenError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, resp)
}

func (h *TokenHandler) writeTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidClient):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_client",
			"error_description": "Client authentication failed",
		})
	case errors.Is(err, services.ErrUnauthorizedClient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unauthorized_client",
			"error_description": "Client is not authorized for this grant type",
		})
	case errors.Is(err, services.ErrInvalidGrant):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_grant",
			"error_description": "Authorization grant is invalid, expired, or already used",
		})
	case errors.Is(err, services.ErrInvalidScope):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_scope",
			"error_description": "Requested scope exceeds what may be granted",
		})
	case errors.Is(err, services.ErrUnsupportedGrantType):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported_grant_type",
			"error_description": "Supported grant types: authorization_code, client_credentials",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "An unexpected error occurred",
		})
	}
}
