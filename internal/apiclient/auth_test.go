package apiclient

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"rooms-client/internal/authtoken"
	"rooms-client/internal/domain"
	"rooms-client/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthClient_Login(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	user := api.AddUser(testutil.NewTestUser(testutil.WithUsername("alice")), "s3cret")

	auth := NewAuthClient(newTestClient(t, api.URL(), nil))

	t.Run("by username", func(t *testing.T) {
		resp, err := auth.Login(context.Background(), domain.LoginCredentials{UsernameOrEmail: "alice", Password: "s3cret"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		require.NotNil(t, resp.User)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.WithinDuration(t, time.Now().Add(testutil.DefaultTokenTTL), resp.Expiry(), 5*time.Second)

		exp, ok, err := authtoken.ExpiresAt(resp.AccessToken)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, resp.Expiry().Unix(), exp.Unix())
	})

	t.Run("by email", func(t *testing.T) {
		_, err := auth.Login(context.Background(), domain.LoginCredentials{UsernameOrEmail: user.Email, Password: "s3cret"})
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(context.Background(), domain.LoginCredentials{UsernameOrEmail: "alice", Password: "nope"})
		require.Error(t, err)
		assert.True(t, domain.IsStatus(err, http.StatusUnauthorized))
		assert.Equal(t, "invalid credentials", domain.Message(err))
	})
}

func TestAuthClient_Register(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	auth := NewAuthClient(newTestClient(t, api.URL(), nil))

	display := "Bob B."
	resp, err := auth.Register(context.Background(), domain.RegisterRequest{
		Username:    "bob",
		Email:       "bob@example.com",
		Password:    "hunter22",
		DisplayName: &display,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Bob B.", resp.User.DisplayName)

	_, err = auth.Register(context.Background(), domain.RegisterRequest{
		Username: "bob",
		Email:    "other@example.com",
		Password: "hunter22",
	})
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, http.StatusConflict))
}

func TestAuthClient_RegisterRejectsBadEmail(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	auth := NewAuthClient(newTestClient(t, api.URL(), nil))

	_, err := auth.Register(context.Background(), domain.RegisterRequest{
		Username: "bob", Email: "not-an-email", Password: "x",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Zero(t, api.Hits(http.MethodPost, "/auth/register"))
}

func TestAuthClient_CurrentUser(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	user := api.AddUser(testutil.NewTestUser(), "pw")
	token := api.IssueToken(user.ID)

	t.Run("valid token", func(t *testing.T) {
		auth := NewAuthClient(newTestClient(t, api.URL(), staticTokens(token)))
		got, err := auth.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, *user, *got)
	})

	t.Run("no token", func(t *testing.T) {
		auth := NewAuthClient(newTestClient(t, api.URL(), staticTokens("")))
		_, err := auth.CurrentUser(context.Background())
		assert.ErrorIs(t, err, domain.ErrNoToken)
	})

	t.Run("rejected token", func(t *testing.T) {
		auth := NewAuthClient(newTestClient(t, api.URL(), staticTokens("stale")))
		_, err := auth.CurrentUser(context.Background())
		assert.ErrorIs(t, err, domain.ErrSessionExpired)
		assert.Equal(t, "session expired, please log in again", domain.Message(err))
	})
}

func TestAuthClient_VerifyToken(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	user := api.AddUser(testutil.NewTestUser(), "pw")
	token := api.IssueToken(user.ID)

	ok, err := NewAuthClient(newTestClient(t, api.URL(), staticTokens(token))).VerifyToken(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	api.RevokeTokens()
	ok, err = NewAuthClient(newTestClient(t, api.URL(), staticTokens(token))).VerifyToken(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	api.Fail(http.MethodGet, "/auth/me", http.StatusInternalServerError, "")
	ok, err = NewAuthClient(newTestClient(t, api.URL(), staticTokens(api.IssueToken(user.ID)))).VerifyToken(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthClient_VerifyTokenCanceled(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := NewAuthClient(newTestClient(t, api.URL(), staticTokens("tok"))).VerifyToken(ctx)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, context.Canceled))
}
