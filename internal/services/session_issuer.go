package services

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/Tubbz-alt/arxiv-auth/internal/config"
	"github.com/Tubbz-alt/arxiv-auth/internal/metrics"
	"github.com/Tubbz-alt/arxiv-auth/internal/models"
	"github.com/Tubbz-alt/arxiv-auth/internal/store"
)

// SessionIssuer mints and persists sessions. A session backs both bearer
// tokens issued by the grant engine and browser logins; the session ID is
// the token value handed to clients.
type SessionIssuer struct {
	store   *store.Store
	config  *config.Config
	metrics metrics.Recorder
}

// NewSessionIssuer creates a new SessionIssuer service
func NewSessionIssuer(st *store.Store, cfg *config.Config, rec metrics.Recorder) *SessionIssuer {
	return &SessionIssuer{
		store:   st,
		config:  cfg,
		metrics: rec,
	}
}

// IssueParams describes the session to mint. User and Client are optional:
// a client_credentials session has no user, a login session has no client.
type IssueParams struct {
	SessionID  string
	Scopes     []string
	User       *models.User
	Client     *models.Client
	RemoteAddr string
}

// Issue persists a session and returns it. The caller must not hand out the
// session ID as a token unless Issue returned without error.
func (s *SessionIssuer) Issue(ctx context.Context, params IssueParams) (*models.Session, error) {
	now := time.Now()

	sess := &models.Session{
		SessionID:  params.SessionID,
		Scopes:     strings.Join(params.Scopes, " "),
		RemoteAddr: params.RemoteAddr,
		RemoteHost: resolveRemoteHost(params.RemoteAddr),
		StartedAt:  now,
		ExpiresAt:  now.Add(s.config.TokenExpiration),
	}
	if params.User != nil {
		sess.UserID = params.User.UserID
		sess.Username = params.User.Username
		sess.UserEmail = params.User.Email
	}
	if params.Client != nil {
		sess.ClientID = params.Client.ClientID
	}

	if err := s.store.CreateSession(ctx, sess); err != nil {
		log.Printf("[SessionIssuer] Failed to persist session: %v", err)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	kind := "token"
	if params.Client == nil {
		kind = "login"
	}
	s.metrics.RecordSessionCreated(kind)

	return sess, nil
}

// Revoke deletes a session by ID. Deleting an unknown session is not an error.
func (s *SessionIssuer) Revoke(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(ctx, sessionID)
}

// resolveRemoteHost strips the port from the client address when one is
// present.
func resolveRemoteHost(remoteAddr string) string {
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return h
	}
	return remoteAddr
}
