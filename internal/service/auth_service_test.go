package service

import (
	"context"
	"testing"
	"time"

	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) (*authService, *memFactory, *fixedClock) {
	t.Helper()

	factory := newMemFactory()
	// Refresh JWT exp claims are checked against the real clock by the JWT
	// library, so the injected clock starts at wall time
	clock := newFixedClock(time.Now().UTC().Truncate(time.Second))

	credentials := NewCredentialStore(factory, nopLogger{}).(*credentialStore)
	credentials.now = clock.Now

	auth := NewAuthService(factory, credentials, nil, nopLogger{}, AuthOptions{
		JWTSecret:       "auth-test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}).(*authService)
	auth.now = clock.Now

	return auth, factory, clock
}

func registerAndLogin(t *testing.T, auth *authService) *dto.LoginResponse {
	t.Helper()

	_, err := auth.Register(context.Background(), &dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	res, err := auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return res
}

func TestLoginValidateRoundTrip(t *testing.T) {
	auth, _, clock := newTestAuthService(t)
	res := registerAndLogin(t, auth)

	assert.Len(t, res.AccessToken, 64) // 32 random bytes, hex encoded
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, clock.Now().Add(time.Hour), res.ExpiresAt)

	user, err := auth.Validate(context.Background(), res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	registerAndLogin(t, auth)

	_, err := auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidCredentials))

	// Unknown email reports the identical failure
	_, err = auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "wrong",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidCredentials))
}

func TestValidateUnknownToken(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, err := auth.Validate(context.Background(), "not-a-token")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidToken))
}

func TestValidateExpiredTokenPurgesRow(t *testing.T) {
	auth, factory, clock := newTestAuthService(t)
	res := registerAndLogin(t, auth)

	clock.Advance(2 * time.Hour)

	_, err := auth.Validate(context.Background(), res.AccessToken)
	assert.True(t, apperror.IsCode(err, apperror.CodeTokenExpired))

	// The expired row was dropped on sight
	assert.NotContains(t, factory.store.tokens, res.AccessToken)

	_, err = auth.Validate(context.Background(), res.AccessToken)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidToken))
}

func TestLogoutRevokesImmediately(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	res := registerAndLogin(t, auth)

	require.NoError(t, auth.Logout(context.Background(), res.AccessToken, ""))

	_, err := auth.Validate(context.Background(), res.AccessToken)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidToken))

	// Logging out again with the same token still succeeds
	assert.NoError(t, auth.Logout(context.Background(), res.AccessToken, ""))
}

func TestConcurrentLoginsAreIndependent(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	first := registerAndLogin(t, auth)

	second, err := auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	// Revoking one leaves the other valid
	require.NoError(t, auth.Logout(context.Background(), first.AccessToken, ""))

	_, err = auth.Validate(context.Background(), second.AccessToken)
	assert.NoError(t, err)
}

func TestRefreshMintsNewAccessToken(t *testing.T) {
	auth, _, clock := newTestAuthService(t)
	res := registerAndLogin(t, auth)

	clock.Advance(30 * time.Minute)

	refreshed, err := auth.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.AccessToken, refreshed.AccessToken)
	assert.Equal(t, res.RefreshToken, refreshed.RefreshToken)

	_, err = auth.Validate(context.Background(), refreshed.AccessToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, err := auth.Refresh(context.Background(), "garbage")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidToken))

	// An access token is not a refresh token
	res := registerAndLogin(t, auth)
	_, err = auth.Refresh(context.Background(), res.AccessToken)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidToken))
}

func TestLogoutDenyListsRefreshToken(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	res := registerAndLogin(t, auth)

	require.NoError(t, auth.Logout(context.Background(), res.AccessToken, res.RefreshToken))

	_, err := auth.Refresh(context.Background(), res.RefreshToken)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidToken))
}

func TestDenyListIsPerToken(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	first := registerAndLogin(t, auth)

	second, err := auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(context.Background(), first.AccessToken, first.RefreshToken))

	// The other login's refresh token still works
	_, err = auth.Refresh(context.Background(), second.RefreshToken)
	assert.NoError(t, err)
}

func TestTrackActiveSession(t *testing.T) {
	auth, factory, _ := newTestAuthService(t)
	res := registerAndLogin(t, auth)

	sessionId := uuid.New()
	require.NoError(t, auth.TrackActiveSession(context.Background(), res.AccessToken, sessionId))

	row := factory.store.tokens[res.AccessToken]
	require.NotNil(t, row.ActiveSessionId)
	assert.Equal(t, sessionId, *row.ActiveSessionId)
}

func TestPurgeExpiredCountsRows(t *testing.T) {
	auth, _, clock := newTestAuthService(t)
	registerAndLogin(t, auth)

	clock.Advance(2 * time.Hour)

	purged, err := auth.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
