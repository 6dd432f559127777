package config

import (
	"fmt"
	"log"
	"strings"

	"rtd-driverpass/internal/adapters/persistence/models"
	"rtd-driverpass/internal/core/domain"
	"rtd-driverpass/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		return err
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the single flat admin account if none exists.
// Station and officer accounts are provisioned by this admin at runtime;
// drivers self-register.
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).
		Where("role = ?", string(domain.RoleAdmin)).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // Admin already exists
	}

	if s.cfg.Admin.Password == "" {
		if s.cfg.IsProd() {
			return fmt.Errorf("ADMIN_PASSWORD must be set to seed the admin account")
		}
		// Dev fallback only
		s.cfg.Admin.Password = "admin123456"
	}

	hashedPassword, err := password.Hash(s.cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: strings.ToUpper(s.cfg.Admin.Username),
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded admin account: %s", admin.Username)
	return nil
}
