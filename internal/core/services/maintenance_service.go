package services

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"rtd-driverpass/internal/adapters/persistence/repositories"
	"rtd-driverpass/internal/pkg/upload"

	"github.com/robfig/cron/v3"
)

// MaintenanceService runs periodic housekeeping: clearing elapsed login
// locks, deleting expired refresh tokens, and removing QR images orphaned
// by rolled-back token issuance. Nothing here belongs to a request path;
// the workflow never depends on a sweep having run.
type MaintenanceService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	submissionRepo   repositories.SubmissionRepository
	uploadDir        string
	cron             *cron.Cron
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	submissionRepo repositories.SubmissionRepository,
	uploadDir string,
) *MaintenanceService {
	return &MaintenanceService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		submissionRepo:   submissionRepo,
		uploadDir:        uploadDir,
		cron:             cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *MaintenanceService) Start() {
	// Expired locks clear themselves logically at login time; the sweep
	// just keeps the table tidy.
	s.cron.AddFunc("*/15 * * * *", s.sweepExpiredLocks)

	// Orphaned QR images, nightly
	s.cron.AddFunc("30 2 * * *", s.sweepOrphanedQRImages)

	// Refresh tokens past their expiry, nightly
	s.cron.AddFunc("0 3 * * *", s.sweepExpiredRefreshTokens)

	s.cron.Start()
	log.Println("🚀 MaintenanceService started")
}

// Stop stops the scheduler and waits for running jobs
func (s *MaintenanceService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 MaintenanceService stopped")
}

func (s *MaintenanceService) sweepExpiredLocks() {
	cleared, err := s.userRepo.ClearExpiredLocks(context.Background())
	if err != nil {
		log.Printf("❌ Lock sweep error: %v", err)
		return
	}
	if cleared > 0 {
		log.Printf("🧹 Cleared %d expired account locks", cleared)
	}
}

func (s *MaintenanceService) sweepExpiredRefreshTokens() {
	deleted, err := s.refreshTokenRepo.DeleteExpired(context.Background())
	if err != nil {
		log.Printf("❌ Refresh token sweep error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🧹 Deleted %d expired refresh tokens", deleted)
	}
}

func (s *MaintenanceService) sweepOrphanedQRImages() {
	active, err := s.submissionRepo.ListActiveQRPaths(context.Background())
	if err != nil {
		log.Printf("❌ QR sweep query error: %v", err)
		return
	}

	keep := make(map[string]bool, len(active))
	for _, name := range active {
		keep[name] = true
	}

	matches, err := filepath.Glob(filepath.Join(s.uploadDir, "qr-*.png"))
	if err != nil {
		log.Printf("❌ QR sweep glob error: %v", err)
		return
	}

	removed := 0
	for _, path := range matches {
		name := filepath.Base(path)
		if keep[name] || !strings.HasPrefix(name, "qr-") {
			continue
		}
		if err := upload.Remove(s.uploadDir, name); err != nil && !os.IsNotExist(err) {
			log.Printf("❌ QR sweep remove %s: %v", name, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("🧹 Removed %d orphaned QR images", removed)
	}
}
