package services

import (
	"testing"

	"github.com/Tubbz-alt/arxiv-auth/internal/models"
	"github.com/Tubbz-alt/arxiv-auth/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestVerifySecret(t *testing.T) {
	auth := NewClientAuthenticator()
	client := &models.Client{
		ClientID:   "client-1",
		SecretHash: util.SHA256Hex("correct horse battery staple"),
	}

	assert.True(t, auth.VerifySecret(client, "correct horse battery staple"))
	assert.False(t, auth.VerifySecret(client, "wrong"))
	assert.False(t, auth.VerifySecret(client, ""))
	assert.False(t, auth.VerifySecret(nil, "anything"))
}

func TestVerifyGrantType(t *testing.T) {
	auth := NewClientAuthenticator()
	client := &models.Client{
		GrantTypes: []string{GrantTypeClientCredentials},
	}

	assert.True(t, auth.VerifyGrantType(client, GrantTypeClientCredentials))
	assert.False(t, auth.VerifyGrantType(client, GrantTypeAuthorizationCode))
	assert.False(t, auth.VerifyGrantType(&models.Client{}, GrantTypeClientCredentials))
	assert.False(t, auth.VerifyGrantType(nil, GrantTypeClientCredentials))
}

func TestVerifyRedirectURI(t *testing.T) {
	auth := NewClientAuthenticator()
	client := &models.Client{
		RedirectURI: "https://client.example.com/callback",
	}

	assert.True(t, auth.VerifyRedirectURI(client, "https://client.example.com/callback"))
	assert.False(t, auth.VerifyRedirectURI(client, "https://client.example.com/callback/"))
	assert.False(t, auth.VerifyRedirectURI(client, "https://other.example.com/callback"))
	assert.False(t, auth.VerifyRedirectURI(client, ""))

	// A client with no registered URI matches nothing.
	assert.False(t, auth.VerifyRedirectURI(&models.Client{}, "https://client.example.com/callback"))
}

func TestVerifyAuthMethod(t *testing.T) {
	auth := NewClientAuthenticator()

	assert.True(t, auth.VerifyAuthMethod(AuthMethodClientSecretPost))
	assert.False(t, auth.VerifyAuthMethod("client_secret_basic"))
	assert.False(t, auth.VerifyAuthMethod(""))
}
