package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Tubbz-alt/arxiv-auth/internal/middleware"
	"github.com/Tubbz-alt/arxiv-auth/internal/services"
)

type AuthorizeHandler struct {
	engine *services.GrantEngine
}

func NewAuthorizeHandler(engine *services.GrantEngine) *AuthorizeHandler {
	return &AuthorizeHandler{engine: engine}
}

// Authorize handles the authorization endpoint (RFC 6749 section 4.1.1).
// On success the user agent is redirected back to the client with a code.
// Errors tied to an unverified client or redirect URI are rendered directly;
// everything else is redirected per section 4.1.2.1.
func (h *AuthorizeHandler) Authorize(c *gin.Context) {
	req := &services.AuthorizeRequest{
		ResponseType: h.param(c, "response_type"),
		ClientID:     h.param(c, "client_id"),
		RedirectURI:  h.param(c, "redirect_uri"),
		Scope:        h.param(c, "scope"),
		State:        h.param(c, "state"),
		Session:      middleware.CurrentSession(c),
	}

	resp, err := h.engine.Authorize(c.Request.Context(), req)
	if err != nil {
		h.writeAuthorizeError(c, req, err)
		return
	}

	redirect, err := url.Parse(resp.RedirectURI)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Registered redirect URI could not be parsed",
		})
		return
	}
	q := redirect.Query()
	q.Set("code", resp.Code)
	if resp.State != "" {
		q.Set("state", resp.State)
	}
	redirect.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, redirect.String())
}

func (h *AuthorizeHandler) writeAuthorizeError(c *gin.Context, req *services.AuthorizeRequest, err error) {
	// The redirect URI cannot be trusted when the client or the URI itself
	// failed validation; those errors never leave the server.
	switch {
	case errors.Is(err, services.ErrInvalidClient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_client",
			"error_description": "Unknown client",
		})
		return
	case errors.Is(err, services.ErrInvalidRedirect):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "redirect_uri does not match the registered URI",
		})
		return
	}

	code := "server_error"
	switch {
	case errors.Is(err, services.ErrUnsupportedResponseType):
		code = "unsupported_response_type"
	case errors.Is(err, services.ErrUnauthorizedClient):
		code = "unauthorized_client"
	case errors.Is(err, services.ErrAccessDenied):
		code = "access_denied"
	case errors.Is(err, services.ErrInvalidScope):
		code = "invalid_scope"
	}

	redirect, perr := url.Parse(req.RedirectURI)
	if perr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": code})
		return
	}
	q := redirect.Query()
	q.Set("error", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	redirect.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, redirect.String())
}

// param reads a request parameter from the form body on POST or the query
// string on GET.
func (h *AuthorizeHandler) param(c *gin.Context, name string) string {
	if c.Request.Method == http.MethodPost {
		if v := c.PostForm(name); v != "" {
			return v
		}
	}
	return c.Query(name)
}
