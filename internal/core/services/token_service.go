package services

import (
	"context"
	"errors"
	"log"

	"rtd-driverpass/internal/adapters/persistence/models"
	"rtd-driverpass/internal/adapters/persistence/repositories"
	"rtd-driverpass/internal/core/domain"
	"rtd-driverpass/internal/pkg/qr"

	"gorm.io/gorm"
)

// Token service errors
var (
	ErrSubmissionNotFound = domain.ErrSubmissionNotFound
	ErrNotVerified        = domain.ErrNotVerified
)

// TokenService issues the scannable verification token on final approval
// and resolves scanned tokens for field officers.
//
// One encoding is canonical on both sides: the QR image embeds the JSON
// payload {"submission_id": "<public id>"} and a redemption request carries
// that same payload, so issuance and redemption share the qr.Payload type.
type TokenService struct {
	submissionRepo repositories.SubmissionRepository
	auditService   *AuditService
	uploadDir      string
}

// NewTokenService creates a new token service
func NewTokenService(submissionRepo repositories.SubmissionRepository, auditService *AuditService, uploadDir string) *TokenService {
	return &TokenService{
		submissionRepo: submissionRepo,
		auditService:   auditService,
		uploadDir:      uploadDir,
	}
}

// Issue renders the QR token for a submission and records the file name on
// the record. Called only inside the admin final-approve transition, before
// that transition commits; a rolled-back transition leaves at most an
// orphan image for the maintenance sweep.
func (s *TokenService) Issue(submission *models.Submission) error {
	name, err := qr.WriteImage(qr.Payload{SubmissionID: submission.PublicID}, s.uploadDir)
	if err != nil {
		return err
	}

	submission.QRCodePath = name
	log.Printf("✅ Verification token issued for submission %s", submission.PublicID)
	return nil
}

// RedeemResult is what an officer's scan returns
type RedeemResult struct {
	DriverUsername string                `json:"driver_username"`
	Data           models.SubmissionData `json:"data"`
	Status         string                `json:"status"`
}

// Redeem looks up the submission a scanned payload points at. Read-only
// and repeatable; the only side effect is the officer_view audit entry,
// which must land before the data is returned.
func (s *TokenService) Redeem(ctx context.Context, payload qr.Payload, officerID uint) (*RedeemResult, error) {
	if payload.SubmissionID == "" {
		return nil, domain.ErrInvalidInput
	}

	submission, err := s.submissionRepo.GetByPublicID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	if submission.FinalStatus != domain.FinalVerified {
		return nil, ErrNotVerified
	}

	if err := s.auditService.Record(ctx, submission.ID, domain.ActionOfficerView, officerID, "Officer viewed submission"); err != nil {
		return nil, err
	}

	result := &RedeemResult{
		Data:   submission.Data,
		Status: submission.FinalStatus,
	}
	if submission.Driver != nil {
		result.DriverUsername = submission.Driver.Username
	}
	return result, nil
}
