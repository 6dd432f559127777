package repositories

import (
	"context"
	"errors"
	"strings"

	"rtd-driverpass/internal/adapters/persistence/models"
	"rtd-driverpass/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// submissionRepository implements SubmissionRepository interface
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// CreateWithAudit inserts a submission and its audit entry in one
// transaction, demoting any earlier current row for the same driver. The
// prior row is re-read under a row lock and its final status re-checked
// there: a service-level freeze check alone would race a concurrent final
// verification, letting a resubmit demote a just-verified row.
func (r *submissionRepository) CreateWithAudit(ctx context.Context, submission *models.Submission, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior models.Submission
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("driver_id = ? AND is_current = ?", submission.DriverID, true).
			First(&prior).Error
		switch {
		case err == nil:
			if prior.FinalStatus == domain.FinalVerified {
				return domain.ErrAlreadyVerified
			}
			if err := tx.Model(&models.Submission{}).
				Where("id = ?", prior.ID).
				Update("is_current", false).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		submission.IsCurrent = true
		if err := tx.Create(submission).Error; err != nil {
			return err
		}

		entry.SubmissionID = submission.ID
		return tx.Create(entry).Error
	})
}

// Transition applies a state change under a row lock. The mutate callback
// receives the fresh row and returns the audit entry describing the change;
// submission save and audit append commit or roll back together.
func (r *submissionRepository) Transition(ctx context.Context, id uint, mutate func(*models.Submission) (*models.AuditEntry, error)) (*models.Submission, error) {
	var submission models.Submission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&submission).Error; err != nil {
			return err
		}

		entry, err := mutate(&submission)
		if err != nil {
			return err
		}

		if err := tx.Save(&submission).Error; err != nil {
			return err
		}

		entry.SubmissionID = submission.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetByID gets a submission by ID
func (r *submissionRepository) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Station").
		Where("id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetByPublicID gets a submission by its opaque public ID (the QR key)
func (r *submissionRepository) GetByPublicID(ctx context.Context, publicID string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Where("public_id = ?", publicID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetCurrentByDriver gets the driver's one actionable submission
func (r *submissionRepository) GetCurrentByDriver(ctx context.Context, driverID uint) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND is_current = ?", driverID, true).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// List lists current submissions with pagination (admin dashboard)
func (r *submissionRepository) List(ctx context.Context, offset, limit int) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("is_current = ?", true).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Station").
		Where("is_current = ?", true).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&submissions).Error
	if err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

// ListAssignedPending lists a station's assignments awaiting its decision
func (r *submissionRepository) ListAssignedPending(ctx context.Context, stationID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Where("station_id = ? AND is_current = ? AND status = ?", stationID, true, domain.StatusPending).
		Order("created_at ASC").
		Find(&submissions).Error
	return submissions, err
}

// ListDecidedByStation lists a station's non-pending history
func (r *submissionRepository) ListDecidedByStation(ctx context.Context, stationID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Where("station_id = ? AND status IN ?", stationID,
			[]string{domain.StatusUnderReview, domain.StatusVerified, domain.StatusRejected}).
		Order("updated_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// Search finds current submissions matching the filter, one row per driver.
// Uniqueness per driver is structural: only current rows are searched and a
// driver has exactly one.
func (r *submissionRepository) Search(ctx context.Context, filter *SearchFilter) ([]*models.Submission, error) {
	query := r.db.WithContext(ctx).
		Preload("Driver").
		Where("is_current = ?", true)

	if v := strings.TrimSpace(filter.FirstName); v != "" {
		query = query.Where("LOWER(first_name) LIKE ?", escapeLike(strings.ToLower(v))+"%")
	}
	if v := strings.TrimSpace(filter.FatherName); v != "" {
		query = query.Where("LOWER(father_name) LIKE ?", escapeLike(strings.ToLower(v))+"%")
	}
	if v := strings.TrimSpace(filter.Mobile); v != "" {
		query = query.Where("mobile = ?", v)
	}
	if v := strings.TrimSpace(filter.AadhaarNum); v != "" {
		query = query.Where("aadhaar_num = ?", v)
	}

	var submissions []*models.Submission
	err := query.Order("created_at DESC").Find(&submissions).Error
	return submissions, err
}

// escapeLike neutralizes LIKE metacharacters in a user-supplied search
// term so the term matches literally before the prefix wildcard is
// appended.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// ListActiveQRPaths returns the QR file names still referenced by a
// verified current submission. The maintenance sweep deletes any QR image
// on disk that is not in this set (files orphaned by rolled-back issuance).
func (r *submissionRepository) ListActiveQRPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("qr_code_path <> '' AND is_current = ? AND final_status = ?", true, domain.FinalVerified).
		Pluck("qr_code_path", &paths).Error
	return paths, err
}
