package services

import (
	"github.com/Tubbz-alt/arxiv-auth/internal/models"
	"github.com/Tubbz-alt/arxiv-auth/internal/util"
)

// AuthMethodClientSecretPost is the only token endpoint authentication
// method the server supports: credentials in the form body.
const AuthMethodClientSecretPost = "client_secret_post"

// ClientAuthenticator validates client credentials and per-client policy
// (grant types, redirect URIs, auth method). It is stateless; the registry
// lookup happens in the grant engine.
type ClientAuthenticator struct{}

// NewClientAuthenticator creates a new ClientAuthenticator service
func NewClientAuthenticator() *ClientAuthenticator {
	return &ClientAuthenticator{}
}

// VerifySecret checks a presented plaintext secret against the client's
// stored digest. The comparison runs in constant time over the hex digests.
func (a *ClientAuthenticator) VerifySecret(client *models.Client, secret string) bool {
	if client == nil || secret == "" {
		return false
	}
	return util.ConstantTimeEquals(client.SecretHash, util.SHA256Hex(secret))
}

// VerifyGrantType reports whether the client is authorized to use the grant.
func (a *ClientAuthenticator) VerifyGrantType(client *models.Client, grantType string) bool {
	if client == nil {
		return false
	}
	for _, gt := range client.GrantTypes {
		if gt == grantType {
			return true
		}
	}
	return false
}

// VerifyRedirectURI checks a requested redirect URI against the client's
// registered URI with exact string comparison. A client with no registered
// URI matches nothing.
func (a *ClientAuthenticator) VerifyRedirectURI(client *models.Client, redirectURI string) bool {
	if client == nil || client.RedirectURI == "" || redirectURI == "" {
		return false
	}
	return client.RedirectURI == redirectURI
}

// VerifyAuthMethod reports whether the client presented its credentials via
// a supported token endpoint authentication method.
func (a *ClientAuthenticator) VerifyAuthMethod(method string) bool {
	return method == AuthMethodClientSecretPost
}
