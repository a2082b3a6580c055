package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Tubbz-alt/arxiv-auth/internal/config"
	"github.com/Tubbz-alt/arxiv-auth/internal/metrics"
	"github.com/Tubbz-alt/arxiv-auth/internal/models"
	"github.com/Tubbz-alt/arxiv-auth/internal/store"
	"github.com/Tubbz-alt/arxiv-auth/internal/util"
)

// Supported grant and response types.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeClientCredentials = "client_credentials"

	ResponseTypeCode = "code"
)

const (
	// authCodeEntropy is the number of random bytes behind an authorization code.
	authCodeEntropy = 48

	// tokenEntropy is the number of random bytes behind an access token.
	tokenEntropy = 32
)

// Grant engine errors. Handlers map these onto the OAuth2 error vocabulary.
var (
	ErrInvalidClient           = errors.New("client authentication failed")
	ErrUnauthorizedClient      = errors.New("client is not authorized for this grant type")
	ErrInvalidGrant            = errors.New("authorization grant is invalid or expired")
	ErrInvalidScope            = errors.New("requested scope exceeds what may be granted")
	ErrUnsupportedGrantType    = errors.New("unsupported grant type")
	ErrUnsupportedResponseType = errors.New("unsupported response type")
	ErrInvalidRedirect         = errors.New("redirect URI does not match registered URI")
	ErrAccessDenied            = errors.New("resource owner authentication required")
)

// GrantEngine executes token requests and the authorize leg of the
// authorization code flow.
type GrantEngine struct {
	store   *store.Store
	config  *config.Config
	auth    *ClientAuthenticator
	scopes  *ScopeAuthorizer
	issuer  *SessionIssuer
	metrics metrics.Recorder
}

// NewGrantEngine creates a new GrantEngine service
func NewGrantEngine(st *store.Store, cfg *config.Config, issuer *SessionIssuer, rec metrics.Recorder) *GrantEngine {
	return &GrantEngine{
		store:   st,
		config:  cfg,
		auth:    NewClientAuthenticator(),
		scopes:  NewScopeAuthorizer(),
		issuer:  issuer,
		metrics: rec,
	}
}

// TokenRequest carries a parsed token endpoint request.
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
	Scope        string
	AuthMethod   string
	RemoteAddr   string

	// Session is the resource owner's session, when one accompanies the
	// request. Required for the authorization code exchange.
	Session *models.Session
}

// TokenResponse is the successful result of a token request.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// Execute dispatches a token request to the handler for its grant type.
func (e *GrantEngine) Execute(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	start := time.Now()

	var (
		resp *TokenResponse
		err  error
	)
	switch req.GrantType {
	case GrantTypeClientCredentials:
		resp, err = e.clientCredentials(ctx, req)
	case GrantTypeAuthorizationCode:
		resp, err = e.authorizationCode(ctx, req)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedGrantType, req.GrantType)
	}

	if err != nil {
		reason := rejectionReason(err)
		log.Printf("[GrantEngine] %s grant rejected for client %s: %s", req.GrantType, req.ClientID, reason)
		e.metrics.RecordGrantRejected(req.GrantType, reason)
		return nil, err
	}

	e.metrics.RecordGrantIssued(req.GrantType, time.Since(start))
	return resp, nil
}

// clientCredentials issues a token bound to the client alone.
func (e *GrantEngine) clientCredentials(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	client, err := e.resolveAndAuthenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	requested := ParseScope(req.Scope)
	if !e.scopes.CheckScopes(client, requested, nil) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScope, req.Scope)
	}
	granted := e.scopes.EffectiveScopes(client, requested)

	return e.mintToken(ctx, client, nil, granted, req.RemoteAddr)
}

// authorizationCode exchanges a previously issued code for a token. The code
// row is deleted before the token is minted, so a crash between the two
// steps voids the code rather than leaving it replayable.
func (e *GrantEngine) authorizationCode(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	client, err := e.resolveAndAuthenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrInvalidGrant)
	}

	code, err := e.store.GetAuthCode(ctx, req.Code, client.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNoSuchAuthCode) {
			return nil, fmt.Errorf("%w: unknown code", ErrInvalidGrant)
		}
		return nil, fmt.Errorf("failed to load authorization code: %w", err)
	}
	if code.IsExpired() {
		return nil, fmt.Errorf("%w: code expired", ErrInvalidGrant)
	}

	if !e.auth.VerifyRedirectURI(client, req.RedirectURI) || req.RedirectURI != code.RedirectURI {
		return nil, fmt.Errorf("%w: redirect_uri mismatch", ErrInvalidGrant)
	}

	// When a resource owner session accompanies the exchange, the code must
	// belong to that user.
	if req.Session != nil && req.Session.HasUser() {
		if _, err := e.store.GetAuthCodeByUser(ctx, req.Code, req.Session.UserID); err != nil {
			if errors.Is(err, store.ErrNoSuchAuthCode) {
				return nil, fmt.Errorf("%w: code was not issued to this user", ErrInvalidGrant)
			}
			return nil, fmt.Errorf("failed to load authorization code: %w", err)
		}
	}

	// Single use. The delete serializes concurrent exchanges of the same
	// code; only the request that deleted the row proceeds.
	if err := e.store.ConsumeAuthCode(ctx, req.Code); err != nil {
		if errors.Is(err, store.ErrNoSuchAuthCode) {
			return nil, fmt.Errorf("%w: code already used", ErrInvalidGrant)
		}
		return nil, fmt.Errorf("failed to consume authorization code: %w", err)
	}

	granted := ParseScope(code.Scope)
	if !e.scopes.CheckScopes(client, granted, nil) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScope, code.Scope)
	}

	user := &models.User{
		UserID:   code.UserID,
		Username: code.Username,
		Email:    code.UserEmail,
	}
	return e.mintToken(ctx, client, user, granted, req.RemoteAddr)
}

// mintToken generates the token value, persists the session it names, and
// builds the response. No token leaves this function unless the session is
// durably stored.
func (e *GrantEngine) mintToken(ctx context.Context, client *models.Client, user *models.User, scopes []string, remoteAddr string) (*TokenResponse, error) {
	token, err := util.RandomToken(tokenEntropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	sess, err := e.issuer.Issue(ctx, IssueParams{
		SessionID:  token,
		Scopes:     scopes,
		User:       user,
		Client:     client,
		RemoteAddr: remoteAddr,
	})
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: sess.SessionID,
		TokenType:   "bearer",
		ExpiresIn:   int(time.Until(sess.ExpiresAt).Seconds()),
		Scope:       sess.Scopes,
	}, nil
}

// resolveAndAuthenticate looks up the client and verifies its credentials
// and grant type authorization.
func (e *GrantEngine) resolveAndAuthenticate(ctx context.Context, req *TokenRequest) (*models.Client, error) {
	if !e.auth.VerifyAuthMethod(req.AuthMethod) {
		return nil, fmt.Errorf("%w: unsupported auth method %q", ErrInvalidClient, req.AuthMethod)
	}

	client, err := e.store.ResolveClient(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNoSuchClient) {
			return nil, fmt.Errorf("%w: unknown client", ErrInvalidClient)
		}
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}

	if !e.auth.VerifySecret(client, req.ClientSecret) {
		log.Printf("[GrantEngine] Secret verification failed for client %s", req.ClientID)
		return nil, fmt.Errorf("%w: bad credentials", ErrInvalidClient)
	}

	if !e.auth.VerifyGrantType(client, req.GrantType) {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorizedClient, req.GrantType)
	}

	return client, nil
}

// AuthorizeRequest carries a parsed authorization endpoint request.
type AuthorizeRequest struct {
	ResponseType string
	ClientID     string
	RedirectURI  string
	Scope        string
	State        string

	// Session is the authenticated resource owner granting access.
	Session *models.Session
}

// AuthorizeResponse is the successful result of the authorize leg.
type AuthorizeResponse struct {
	Code        string
	RedirectURI string
	State       string
}

// Authorize validates an authorization request against the client's
// registration and the resource owner's session, then mints a single-use
// code bound to the client, user, redirect URI, and scope.
func (e *GrantEngine) Authorize(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	client, err := e.store.ResolveClient(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNoSuchClient) {
			return nil, fmt.Errorf("%w: unknown client", ErrInvalidClient)
		}
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}

	// The redirect URI must be validated before any error is sent to it.
	if !e.auth.VerifyRedirectURI(client, req.RedirectURI) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRedirect, req.RedirectURI)
	}

	if req.ResponseType != ResponseTypeCode {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedResponseType, req.ResponseType)
	}
	if !e.auth.VerifyGrantType(client, GrantTypeAuthorizationCode) {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorizedClient, GrantTypeAuthorizationCode)
	}

	if req.Session == nil || !req.Session.HasUser() {
		return nil, ErrAccessDenied
	}

	requested := ParseScope(req.Scope)
	if !e.scopes.CheckScopes(client, requested, req.Session) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScope, req.Scope)
	}
	granted := e.scopes.EffectiveScopes(client, requested)

	value, err := util.RandomToken(authCodeEntropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate authorization code: %w", err)
	}

	now := time.Now()
	code := &models.AuthorizationCode{
		Code:        value,
		ClientID:    client.ClientID,
		UserID:      req.Session.UserID,
		Username:    req.Session.Username,
		UserEmail:   req.Session.UserEmail,
		RedirectURI: req.RedirectURI,
		Scope:       strings.Join(granted, " "),
		CreatedAt:   now,
		ExpiresAt:   now.Add(e.config.AuthCodeExpiration),
	}
	if err := e.store.SaveAuthCode(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to save authorization code: %w", err)
	}

	e.metrics.RecordAuthCodeIssued()

	return &AuthorizeResponse{
		Code:        code.Code,
		RedirectURI: req.RedirectURI,
		State:       req.State,
	}, nil
}

// rejectionReason maps an engine error onto the OAuth2 error code it will
// surface as, for metrics labels.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidClient):
		return "invalid_client"
	case errors.Is(err, ErrUnauthorizedClient):
		return "unauthorized_client"
	case errors.Is(err, ErrInvalidGrant):
		return "invalid_grant"
	case errors.Is(err, ErrInvalidScope):
		return "invalid_scope"
	case errors.Is(err, ErrUnsupportedGrantType):
		return "unsupported_grant_type"
	default:
		return "server_error"
	}
}
