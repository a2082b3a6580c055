package services

import (
	"strings"

	"github.com/Tubbz-alt/arxiv-auth/internal/models"
)

// ScopeAuthorizer decides whether a requested scope set may be granted to a
// client, optionally on behalf of a user session.
type ScopeAuthorizer struct{}

// NewScopeAuthorizer creates a new ScopeAuthorizer service
func NewScopeAuthorizer() *ScopeAuthorizer {
	return &ScopeAuthorizer{}
}

// CheckScopes reports whether every requested scope is held by the client
// and, when sess carries a user, by the user's session as well. An empty
// request is trivially authorized.
func (s *ScopeAuthorizer) CheckScopes(client *models.Client, requested []string, sess *models.Session) bool {
	if len(requested) == 0 {
		return true
	}
	if client == nil {
		return false
	}
	if !isSubset(requested, client.Scopes) {
		return false
	}
	if sess != nil && sess.HasUser() {
		if !isSubset(requested, sess.ScopeList()) {
			return false
		}
	}
	return true
}

// EffectiveScopes resolves the scope set a grant should carry: the requested
// scopes when any were named, otherwise everything the client holds.
func (s *ScopeAuthorizer) EffectiveScopes(client *models.Client, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return client.Scopes
}

// ParseScope splits a space-delimited scope parameter into a scope set.
func ParseScope(scope string) []string {
	return strings.Fields(scope)
}

func isSubset(requested, granted []string) bool {
	held := make(map[string]struct{}, len(granted))
	for _, sc := range granted {
		held[sc] = struct{}{}
	}
	for _, sc := range requested {
		if _, ok := held[sc]; !ok {
			return false
		}
	}
	return true
}
