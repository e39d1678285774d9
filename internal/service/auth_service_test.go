package service

import (
	"testing"
	"time"

	"spotshare/config"
	"spotshare/internal/auth"
	"spotshare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access",
			RefreshSecret: "test-refresh",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
			Issuer:        "spotshare",
		},
	}
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	return NewAuthService(testConfig(), repository.NewUserRepository(db))
}

func TestRegister_IssuesUsableTokens(t *testing.T) {
	svc := newAuthService(t)

	u, access, refresh, err := svc.Register("anna@example.com", "anna", "hunter2secret")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	claims, err := auth.ParseAccessToken(&testConfig().JWT, access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "anna@example.com", claims.Email)
}

func TestRegister_DuplicateEmailAndUsername(t *testing.T) {
	svc := newAuthService(t)

	_, _, _, err := svc.Register("anna@example.com", "anna", "hunter2secret")
	require.NoError(t, err)

	_, _, _, err = svc.Register("anna@example.com", "other", "hunter2secret")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, _, _, err = svc.Register("other@example.com", "anna", "hunter2secret")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)

	_, _, _, err := svc.Register("anna@example.com", "anna", "hunter2secret")
	require.NoError(t, err)

	u, access, _, err := svc.Login("anna@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, "anna", u.Username)
	assert.NotEmpty(t, access)

	_, _, _, err = svc.Login("anna@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	_, _, _, err = svc.Login("nobody@example.com", "hunter2secret")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLoginWithGoogle_CreatesThenLinks(t *testing.T) {
	svc := newAuthService(t)

	u, _, _, isNew, err := svc.LoginWithGoogle("gid-1", "anna@example.com", "Anna Schmidt", "https://img.example/a.png")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "anna_schmidt", u.Username)

	// same Google ID comes back to the same account
	u2, _, _, isNew, err := svc.LoginWithGoogle("gid-1", "anna@example.com", "Anna Schmidt", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, u2.ID)
}

func TestLoginWithGoogle_LinksExistingEmailAccount(t *testing.T) {
	svc := newAuthService(t)

	registered, _, _, err := svc.Register("anna@example.com", "anna", "hunter2secret")
	require.NoError(t, err)

	u, _, _, isNew, err := svc.LoginWithGoogle("gid-1", "anna@example.com", "Anna", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, registered.ID, u.ID)
	require.NotNil(t, u.GoogleID)
	assert.Equal(t, "gid-1", *u.GoogleID)
}

func TestChangePassword(t *testing.T) {
	svc := newAuthService(t)

	u, _, _, err := svc.Register("anna@example.com", "anna", "hunter2secret")
	require.NoError(t, err)

	err = svc.ChangePassword(u.ID, "wrong", "newpassword123")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	err = svc.ChangePassword(u.ID, "hunter2secret", "newpassword123")
	require.NoError(t, err)

	_, _, _, err = svc.Login("anna@example.com", "newpassword123")
	assert.NoError(t, err)
	_, _, _, err = svc.Login("anna@example.com", "hunter2secret")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRefreshToken(t *testing.T) {
	svc := newAuthService(t)

	_, _, refresh, err := svc.Register("anna@example.com", "anna", "hunter2secret")
	require.NoError(t, err)

	access, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, newRefresh)

	_, _, err = svc.RefreshToken("garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// access token is not a valid refresh token
	_, _, err = svc.RefreshToken(access)
	assert.Error(t, err)
}
