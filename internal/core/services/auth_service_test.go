package services

import (
	"context"
	"testing"
	"time"

	"rtd-driverpass/internal/config"
	"rtd-driverpass/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  30,
			RefreshTokenDays: 7,
		},
		Lockout: config.LockoutConfig{
			MaxAttempts: 5,
			WindowSecs:  60,
		},
	}
}

func newTestAuthService() (*AuthService, *fakeUserRepo, *fakeRefreshTokenRepo) {
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()
	return NewAuthService(userRepo, tokenRepo, testConfig()), userRepo, tokenRepo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	user, err := svc.Register(ctx, "john", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "JOHN", user.Username)
	assert.Equal(t, string(domain.RoleDriver), user.Role)
	assert.Nil(t, user.CreatedBy)
}

func TestRegisterMissingFields(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(ctx, "", "secret123")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Register(ctx, "john", "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestRegisterUsernameCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(ctx, "john", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "JoHn", "other456")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestProvision(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	station, err := svc.Provision(ctx, "station1", "secret123", domain.RoleStation, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "STATION1", station.Username)
	assert.Equal(t, string(domain.RoleStation), station.Role)
	require.NotNil(t, station.CreatedBy)
	assert.Equal(t, "ADMIN", *station.CreatedBy)

	officer, err := svc.Provision(ctx, "officer1", "secret123", domain.RoleOfficer, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleOfficer), officer.Role)
}

func TestProvisionRejectsNonProvisionableRoles(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Provision(ctx, "sneaky", "secret123", domain.RoleAdmin, "ADMIN")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Provision(ctx, "sneaky", "secret123", domain.RoleDriver, "ADMIN")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(ctx, "john", "secret123")
	require.NoError(t, err)

	// Login is case-insensitive on the username
	resp, err := svc.Login(ctx, "John", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "JOHN", resp.User.Username)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleDriver), claims.Role)
}

func TestLoginUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	// Unknown user and wrong password are indistinguishable to the caller
	_, err := svc.Login(ctx, "ghost", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(ctx, "john", "secret123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "john", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _ := newTestAuthService()

	base := time.Now()
	svc.now = func() time.Time { return base }

	_, err := svc.Register(ctx, "john", "secret123")
	require.NoError(t, err)

	// Four failures leave the account usable
	for i := 0; i < 4; i++ {
		_, err = svc.Login(ctx, "john", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Fifth failure trips the lock
	_, err = svc.Login(ctx, "john", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, err := userRepo.GetByUsername(ctx, "JOHN")
	require.NoError(t, err)
	require.NotNil(t, user.LockedUntil)
	assert.True(t, user.IsLocked(base))

	// Even the correct password bounces while the window is open
	_, err = svc.Login(ctx, "john", "secret123")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// The window elapses, the correct password works again
	svc.now = func() time.Time { return base.Add(61 * time.Second) }
	resp, err := svc.Login(ctx, "john", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// Success cleared the lock and the failure counter
	user, err = userRepo.GetByUsername(ctx, "JOHN")
	require.NoError(t, err)
	assert.Nil(t, user.LockedUntil)
	assert.Zero(t, user.FailedLogins)
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _ := newTestAuthService()

	_, err := svc.Register(ctx, "john", "secret123")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.Login(ctx, "john", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err = svc.Login(ctx, "john", "secret123")
	require.NoError(t, err)

	user, err := userRepo.GetByUsername(ctx, "JOHN")
	require.NoError(t, err)
	assert.Zero(t, user.FailedLogins)

	// Counter starts over, so three more failures still do not lock
	for i := 0; i < 3; i++ {
		_, err = svc.Login(ctx, "john", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	user, err = userRepo.GetByUsername(ctx, "JOHN")
	require.NoError(t, err)
	assert.Nil(t, user.LockedUntil)
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(ctx, "john", "secret123")
	require.NoError(t, err)

	login, err := svc.Login(ctx, "john", "secret123")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old refresh token died with the rotation
	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshTokenGarbage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.RefreshToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(ctx, "john", "secret123")
	require.NoError(t, err)

	login, err := svc.Login(ctx, "john", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestListProvisioned(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(ctx, "driver1", "secret123")
	require.NoError(t, err)
	_, err = svc.Provision(ctx, "station1", "secret123", domain.RoleStation, "ADMIN")
	require.NoError(t, err)
	_, err = svc.Provision(ctx, "officer1", "secret123", domain.RoleOfficer, "ADMIN")
	require.NoError(t, err)

	users, err := svc.ListProvisioned(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, string(domain.RoleDriver), u.Role)
	}
}
