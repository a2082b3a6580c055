package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Tubbz-alt/arxiv-auth/internal/models"
	"github.com/Tubbz-alt/arxiv-auth/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New("sqlite", ":memory:")
	require.NoError(t, err)
	return st
}

func seedClient(t *testing.T, st *Store) *models.Client {
	t.Helper()
	client := &models.Client{
		ClientID:    uuid.NewString(),
		Name:        "Test Client",
		RedirectURI: "https://client.example.com/callback",
		SecretHash:  util.SHA256Hex("s3cret"),
		Scopes:      []string{"profile:read", "submission:read"},
		GrantTypes:  []string{"authorization_code", "client_credentials"},
	}
	require.NoError(t, st.CreateClient(context.Background(), client))
	return client
}

func seedAuthCode(t *testing.T, st *Store, clientID, userID string) *models.AuthorizationCode {
	t.Helper()
	value, err := util.RandomToken(48)
	require.NoError(t, err)

	now := time.Now()
	code := &models.AuthorizationCode{
		Code:        value,
		ClientID:    clientID,
		UserID:      userID,
		Username:    "jdoe",
		UserEmail:   "jdoe@example.com",
		RedirectURI: "https://client.example.com/callback",
		Scope:       "profile:read",
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}
	require.NoError(t, st.SaveAuthCode(context.Background(), code))
	return code
}

func TestResolveClient(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seeded := seedClient(t, st)

	client, err := st.ResolveClient(ctx, seeded.ClientID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ClientID, client.ClientID)
	assert.Equal(t, seeded.SecretHash, client.SecretHash)
	assert.ElementsMatch(t, []string{"profile:read", "submission:read"}, client.Scopes)
	assert.ElementsMatch(t, []string{"authorization_code", "client_credentials"}, client.GrantTypes)
}

func TestResolveClientNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.ResolveClient(context.Background(), "no-such-client")
	assert.ErrorIs(t, err, ErrNoSuchClient)
}

func TestAuthCodeLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, st)
	code := seedAuthCode(t, st, client.ClientID, "user-1")

	loaded, err := st.GetAuthCode(ctx, code.Code, client.ClientID)
	require.NoError(t, err)
	assert.Equal(t, code.Scope, loaded.Scope)
	assert.Equal(t, "user-1", loaded.UserID)

	// The code is scoped to the issuing client.
	_, err = st.GetAuthCode(ctx, code.Code, "other-client")
	assert.ErrorIs(t, err, ErrNoSuchAuthCode)

	// And to the user it was issued for.
	_, err = st.GetAuthCodeByUser(ctx, code.Code, "user-1")
	require.NoError(t, err)
	_, err = st.GetAuthCodeByUser(ctx, code.Code, "user-2")
	assert.ErrorIs(t, err, ErrNoSuchAuthCode)

	require.NoError(t, st.ConsumeAuthCode(ctx, code.Code))

	_, err = st.GetAuthCode(ctx, code.Code, client.ClientID)
	assert.ErrorIs(t, err, ErrNoSuchAuthCode)

	// A second consume finds nothing.
	assert.ErrorIs(t, st.ConsumeAuthCode(ctx, code.Code), ErrNoSuchAuthCode)
}

func TestSaveAuthCodeDuplicate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, st)
	code := seedAuthCode(t, st, client.ClientID, "user-1")

	dup := *code
	assert.ErrorIs(t, st.SaveAuthCode(ctx, &dup), ErrDuplicateCode)
}

func TestConsumeAuthCodeConcurrent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, st)
	code := seedAuthCode(t, st, client.ClientID, "user-1")

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = st.ConsumeAuthCode(ctx, code.Code)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrNoSuchAuthCode)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent consume must succeed")
}

func TestSessionLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	sess := &models.Session{
		SessionID: uuid.NewString(),
		Scopes:    "profile:read profile:update",
		UserID:    "user-1",
		Username:  "jdoe",
		StartedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, st.CreateSession(ctx, sess))

	loaded, err := st.GetSession(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, sess.Scopes, loaded.Scopes)
	assert.True(t, loaded.HasUser())
	assert.Equal(t, []string{"profile:read", "profile:update"}, loaded.ScopeList())

	require.NoError(t, st.DeleteSession(ctx, sess.SessionID))
	_, err = st.GetSession(ctx, sess.SessionID)
	assert.ErrorIs(t, err, ErrNoSuchSession)

	// Deleting again is a no-op.
	assert.NoError(t, st.DeleteSession(ctx, sess.SessionID))
}

func TestUserLookup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := &models.User{
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, st.CreateUser(ctx, user))
	require.NotEmpty(t, user.UserID)

	byName, err := st.GetUserByUsername(ctx, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, byName.UserID)

	byID, err := st.GetUserByID(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", byID.Username)

	_, err = st.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNoSuchUser)
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New("oracle", "dsn")
	assert.Error(t, err)
}
