package repositories

import (
	"context"
	"time"

	"rtd-driverpass/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername gets a user by username (caller normalizes case)
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ListByRoles lists users having any of the given roles
func (r *userRepository) ListByRoles(ctx context.Context, roles ...string) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("role IN ?", roles).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// ExistsByUsername checks if username exists
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ClearExpiredLocks resets lockout state on accounts whose window elapsed
func (r *userRepository) ClearExpiredLocks(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("locked_until IS NOT NULL AND locked_until <= ?", time.Now()).
		Updates(map[string]interface{}{
			"locked_until":  nil,
			"failed_logins": 0,
		})
	return result.RowsAffected, result.Error
}
