package repositories

import (
	"context"

	"rtd-driverpass/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListByRoles(ctx context.Context, roles ...string) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ClearExpiredLocks(ctx context.Context) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// SearchFilter narrows an admin driver search. Name fields match by
// case-insensitive prefix, the rest match exactly.
type SearchFilter struct {
	FirstName  string
	FatherName string
	Mobile     string
	AadhaarNum string
}

// SubmissionRepository defines submission repository interface.
//
// Every write that changes review state is paired with exactly one audit
// entry inside one database transaction, so a transition is never visible
// without its audit row. Transition additionally locks the submission row,
// serializing concurrent transitions per submission.
type SubmissionRepository interface {
	CreateWithAudit(ctx context.Context, submission *models.Submission, entry *models.AuditEntry) error
	Transition(ctx context.Context, id uint, mutate func(*models.Submission) (*models.AuditEntry, error)) (*models.Submission, error)
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetByPublicID(ctx context.Context, publicID string) (*models.Submission, error)
	GetCurrentByDriver(ctx context.Context, driverID uint) (*models.Submission, error)
	List(ctx context.Context, offset, limit int) ([]*models.Submission, int64, error)
	ListAssignedPending(ctx context.Context, stationID uint) ([]*models.Submission, error)
	ListDecidedByStation(ctx context.Context, stationID uint) ([]*models.Submission, error)
	Search(ctx context.Context, filter *SearchFilter) ([]*models.Submission, error)
	ListActiveQRPaths(ctx context.Context) ([]string, error)
}

// AuditRepository defines audit trail repository interface
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	ListBySubmission(ctx context.Context, submissionID uint) ([]*models.AuditEntry, error)
}
