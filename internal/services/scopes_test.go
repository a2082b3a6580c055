package services

import (
	"testing"

	"github.com/Tubbz-alt/arxiv-auth/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCheckScopesClientOnly(t *testing.T) {
	authz := NewScopeAuthorizer()
	client := &models.Client{
		Scopes: []string{"profile:read", "submission:read"},
	}

	assert.True(t, authz.CheckScopes(client, nil, nil))
	assert.True(t, authz.CheckScopes(client, []string{"profile:read"}, nil))
	assert.True(t, authz.CheckScopes(client, []string{"profile:read", "submission:read"}, nil))
	assert.False(t, authz.CheckScopes(client, []string{"upload:admin"}, nil))
	assert.False(t, authz.CheckScopes(client, []string{"profile:read", "upload:admin"}, nil))
	assert.False(t, authz.CheckScopes(nil, []string{"profile:read"}, nil))
}

func TestCheckScopesWithUserSession(t *testing.T) {
	authz := NewScopeAuthorizer()
	client := &models.Client{
		Scopes: []string{"profile:read", "submission:read"},
	}
	sess := &models.Session{
		UserID: "user-1",
		Scopes: "profile:read",
	}

	// Both the client and the user session hold profile:read.
	assert.True(t, authz.CheckScopes(client, []string{"profile:read"}, sess))

	// The client holds submission:read but the user session does not.
	assert.False(t, authz.CheckScopes(client, []string{"submission:read"}, sess))

	// A session with no user does not constrain the grant.
	assert.True(t, authz.CheckScopes(client, []string{"submission:read"}, &models.Session{}))
}

func TestEffectiveScopes(t *testing.T) {
	authz := NewScopeAuthorizer()
	client := &models.Client{
		Scopes: []string{"profile:read", "submission:read"},
	}

	assert.Equal(t, []string{"profile:read"}, authz.EffectiveScopes(client, []string{"profile:read"}))
	assert.Equal(t, client.Scopes, authz.EffectiveScopes(client, nil))
}

func TestParseScope(t *testing.T) {
	assert.Empty(t, ParseScope(""))
	assert.Equal(t, []string{"a"}, ParseScope("a"))
	assert.Equal(t, []string{"a", "b"}, ParseScope("a  b"))
	assert.Equal(t, []string{"a", "b"}, ParseScope(" a b "))
}
