package services

import (
	"context"

	"rtd-driverpass/internal/adapters/persistence/models"
	"rtd-driverpass/internal/adapters/persistence/repositories"
)

// AuditService records and reads the submission audit trail. Writes that
// belong to a workflow transition go through the submission repository's
// transactional path instead; this service covers standalone appends
// (officer views) and trail reads.
type AuditService struct {
	auditRepo repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record appends one immutable entry. A failed append propagates to the
// caller so the surrounding operation fails with it.
func (s *AuditService) Record(ctx context.Context, submissionID uint, action string, actorID uint, details string) error {
	entry := &models.AuditEntry{
		SubmissionID: submissionID,
		Action:       action,
		ActorID:      actorID,
		Details:      details,
	}
	return s.auditRepo.Create(ctx, entry)
}

// Trail returns a submission's entries in occurrence order, oldest first
func (s *AuditService) Trail(ctx context.Context, submissionID uint) ([]*models.AuditEntryResponse, error) {
	entries, err := s.auditRepo.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, e.ToResponse())
	}
	return responses, nil
}
