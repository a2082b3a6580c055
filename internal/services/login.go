package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Tubbz-alt/arxiv-auth/internal/metrics"
	"github.com/Tubbz-alt/arxiv-auth/internal/models"
	"github.com/Tubbz-alt/arxiv-auth/internal/scopes"
	"github.com/Tubbz-alt/arxiv-auth/internal/store"
	"github.com/Tubbz-alt/arxiv-auth/internal/util"
)

// ErrBadCredentials covers both unknown usernames and wrong passwords so the
// response does not reveal which one failed.
var ErrBadCredentials = errors.New("invalid username or password")

// loginSessionEntropy is the number of random bytes behind a login session ID.
const loginSessionEntropy = 32

// LoginService authenticates resource owners and opens login sessions.
type LoginService struct {
	store   *store.Store
	issuer  *SessionIssuer
	metrics metrics.Recorder
}

// NewLoginService creates a new LoginService
func NewLoginService(st *store.Store, issuer *SessionIssuer, rec metrics.Recorder) *LoginService {
	return &LoginService{
		store:   st,
		issuer:  issuer,
		metrics: rec,
	}
}

// Login verifies the password against the stored bcrypt hash and opens a
// session carrying the default user scope set.
func (s *LoginService) Login(ctx context.Context, username, password, remoteAddr string) (*models.Session, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNoSuchUser) {
			s.metrics.RecordLogin(false)
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.metrics.RecordLogin(false)
		return nil, ErrBadCredentials
	}

	sessionID, err := util.RandomToken(loginSessionEntropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	sess, err := s.issuer.Issue(ctx, IssueParams{
		SessionID:  sessionID,
		Scopes:     scopes.GeneralUser,
		User:       user,
		RemoteAddr: remoteAddr,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(true)
	return sess, nil
}

// Logout revokes the session named by sessionID.
func (s *LoginService) Logout(ctx context.Context, sessionID string) error {
	return s.issuer.Revoke(ctx, sessionID)
}
