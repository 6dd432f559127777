package services

import (
	"context"
	"testing"
	"time"

	"rtd-driverpass/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMaintenanceFixture(t *testing.T) (*MaintenanceService, *fakeUserRepo, *fakeRefreshTokenRepo) {
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()
	svc := NewMaintenanceService(userRepo, tokenRepo, newFakeSubmissionRepo(), t.TempDir())
	return svc, userRepo, tokenRepo
}

func TestSweepExpiredLocks(t *testing.T) {
	svc, userRepo, _ := newMaintenanceFixture(t)
	ctx := context.Background()

	elapsed := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	require.NoError(t, userRepo.Create(ctx, &models.User{Username: "STALE", LockedUntil: &elapsed}))
	require.NoError(t, userRepo.Create(ctx, &models.User{Username: "FRESH", LockedUntil: &future}))

	svc.sweepExpiredLocks()

	stale, err := userRepo.GetByUsername(ctx, "STALE")
	require.NoError(t, err)
	assert.Nil(t, stale.LockedUntil)

	fresh, err := userRepo.GetByUsername(ctx, "FRESH")
	require.NoError(t, err)
	require.NotNil(t, fresh.LockedUntil)
}

func TestSweepExpiredRefreshTokens(t *testing.T) {
	svc, _, tokenRepo := newMaintenanceFixture(t)
	ctx := context.Background()

	require.NoError(t, tokenRepo.Create(ctx, &models.RefreshToken{
		UserID:    1,
		TokenHash: "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, tokenRepo.Create(ctx, &models.RefreshToken{
		UserID:    1,
		TokenHash: "live",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	svc.sweepExpiredRefreshTokens()

	_, err := tokenRepo.GetByTokenHash(ctx, "stale")
	assert.Error(t, err)

	live, err := tokenRepo.GetByTokenHash(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "live", live.TokenHash)
}
