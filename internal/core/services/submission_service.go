package services

import (
	"context"
	"errors"
	"log"

	"rtd-driverpass/internal/adapters/persistence/models"
	"rtd-driverpass/internal/adapters/persistence/repositories"
	"rtd-driverpass/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission workflow errors
var (
	ErrAlreadyVerified = domain.ErrAlreadyVerified
	ErrStationNotFound = domain.ErrStationNotFound
	ErrNotAssigned     = domain.ErrNotAssigned
	ErrInvalidVerdict  = errors.New("verdict must be verified or rejected")
)

// DefaultStationReason is used when a station rejects without a reason
const DefaultStationReason = "Rejected by station"

// SubmissionService drives the review workflow. Two status axes move
// independently: Status follows the station's recommendation, FinalStatus
// is the admin's terminal call. The admin is never blocked by the
// station's disposition; only FinalStatus=verified freezes a submission.
type SubmissionService struct {
	submissionRepo repositories.SubmissionRepository
	userRepo       repositories.UserRepository
	tokenService   *TokenService
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	submissionRepo repositories.SubmissionRepository,
	userRepo repositories.UserRepository,
	tokenService *TokenService,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		tokenService:   tokenService,
	}
}

// SubmitInput carries the driver's credential packet. Document fields hold
// stored upload names; empty document fields on a resubmission fall back
// to the previously stored file.
type SubmitInput struct {
	Data models.SubmissionData
}

// Submit creates or replaces the driver's current submission.
//
// A resubmission restarts the whole pipeline: new current row, pending on
// both axes, no station, no token. The previous row is kept for history
// but stops being actionable. A verified submission is frozen and rejects
// resubmission outright.
func (s *SubmissionService) Submit(ctx context.Context, driverID uint, input *SubmitInput) (*models.Submission, error) {
	data := input.Data
	if data.FirstName == "" || data.Mobile == "" {
		return nil, domain.ErrInvalidInput
	}

	previous, err := s.submissionRepo.GetCurrentByDriver(ctx, driverID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	action := domain.ActionSubmitted
	details := "Driver submitted new form."

	if previous != nil {
		if previous.FinalStatus == domain.FinalVerified {
			return nil, ErrAlreadyVerified
		}

		// Keep documents the driver did not re-upload
		carryForwardDocs(&data, &previous.Data)

		action = domain.ActionUpdatedSubmission
		details = "Driver re-submitted form after rejection or initial submission."
	}

	submission := &models.Submission{
		PublicID:    uuid.New().String(),
		DriverID:    driverID,
		Data:        data,
		Status:      domain.StatusPending,
		FinalStatus: domain.FinalPending,
	}

	entry := &models.AuditEntry{
		Action:  action,
		ActorID: driverID,
		Details: details,
	}

	if err := s.submissionRepo.CreateWithAudit(ctx, submission, entry); err != nil {
		return nil, err
	}

	log.Printf("✅ Submission %s saved for driver %d (%s)", submission.PublicID, driverID, action)
	return submission, nil
}

func carryForwardDocs(next, prev *models.SubmissionData) {
	if next.Photo == "" {
		next.Photo = prev.Photo
	}
	if next.AadhaarDoc == "" {
		next.AadhaarDoc = prev.AadhaarDoc
	}
	if next.RCDoc == "" {
		next.RCDoc = prev.RCDoc
	}
	if next.LicenseDoc == "" {
		next.LicenseDoc = prev.LicenseDoc
	}
	if next.InsuranceDoc == "" {
		next.InsuranceDoc = prev.InsuranceDoc
	}
	if next.PollutionDoc == "" {
		next.PollutionDoc = prev.PollutionDoc
	}
}

// Assign routes a submission to a police station for first-stage review.
// Assignment does not advance the workflow status by itself.
func (s *SubmissionService) Assign(ctx context.Context, submissionID, stationID, adminID uint) (*models.Submission, error) {
	station, err := s.userRepo.GetByID(ctx, stationID)
	if err != nil || station.Role != string(domain.RoleStation) {
		return nil, ErrStationNotFound
	}

	submission, err := s.submissionRepo.Transition(ctx, submissionID, func(sub *models.Submission) (*models.AuditEntry, error) {
		sub.StationID = &station.ID
		sub.Status = domain.StatusPending

		return &models.AuditEntry{
			Action:  domain.ActionAssignedToStation,
			ActorID: adminID,
			Details: "Assigned to station " + station.Username,
		}, nil
	})
	if err != nil {
		return nil, s.mapTransitionErr(err)
	}

	return submission, nil
}

// StationDecide records the assigned station's recommendation. The caller
// must hold the assignment; that check runs before any mutation.
func (s *SubmissionService) StationDecide(ctx context.Context, submissionID, stationID uint, approve bool, reason string) (*models.Submission, error) {
	submission, err := s.submissionRepo.Transition(ctx, submissionID, func(sub *models.Submission) (*models.AuditEntry, error) {
		if sub.StationID == nil || *sub.StationID != stationID {
			return nil, ErrNotAssigned
		}

		if approve {
			sub.Status = domain.StatusUnderReview
			sub.StationVerified = true
			sub.StationReason = ""

			return &models.AuditEntry{
				Action:  domain.ActionStationVerified,
				ActorID: stationID,
				Details: "Verified by station",
			}, nil
		}

		if reason == "" {
			reason = DefaultStationReason
		}
		sub.Status = domain.StatusRejected
		sub.StationVerified = false
		sub.StationReason = reason

		return &models.AuditEntry{
			Action:  domain.ActionStationRejected,
			ActorID: stationID,
			Details: "Rejected: " + reason,
		}, nil
	})
	if err != nil {
		return nil, s.mapTransitionErr(err)
	}

	return submission, nil
}

// Finalize records the admin's terminal decision. Independent of the
// station's disposition: the admin can approve what the station rejected
// and vice versa. Approval issues the verification token inside the same
// transition; a repeated approval fails on the verified guard.
func (s *SubmissionService) Finalize(ctx context.Context, submissionID uint, verdict, reason string, adminID uint) (*models.Submission, error) {
	if verdict != domain.FinalVerified && verdict != domain.FinalRejected {
		return nil, ErrInvalidVerdict
	}

	submission, err := s.submissionRepo.Transition(ctx, submissionID, func(sub *models.Submission) (*models.AuditEntry, error) {
		if sub.FinalStatus == domain.FinalVerified {
			return nil, ErrAlreadyVerified
		}

		if verdict == domain.FinalVerified {
			sub.FinalStatus = domain.FinalVerified
			sub.Status = domain.StatusVerified
			sub.FinalReason = ""

			if err := s.tokenService.Issue(sub); err != nil {
				return nil, err
			}

			return &models.AuditEntry{
				Action:  domain.ActionAdminVerified,
				ActorID: adminID,
				Details: "Final verification",
			}, nil
		}

		sub.FinalStatus = domain.FinalRejected
		sub.Status = domain.StatusRejected
		sub.FinalReason = reason
		sub.QRCodePath = ""

		return &models.AuditEntry{
			Action:  domain.ActionAdminRejected,
			ActorID: adminID,
			Details: "Rejected: " + reason,
		}, nil
	})
	if err != nil {
		return nil, s.mapTransitionErr(err)
	}

	return submission, nil
}

// GetMine returns the driver's current submission
func (s *SubmissionService) GetMine(ctx context.Context, driverID uint) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetCurrentByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

// QRFile resolves the stored token image name for a driver's own
// submission. Fails when the submission belongs to someone else or no
// token has been issued.
func (s *SubmissionService) QRFile(ctx context.Context, driverID, submissionID uint) (string, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSubmissionNotFound
		}
		return "", err
	}

	if submission.DriverID != driverID {
		return "", domain.ErrForbidden
	}
	if submission.QRCodePath == "" {
		return "", ErrSubmissionNotFound
	}
	return submission.QRCodePath, nil
}

// ListAssigned lists a station's submissions still awaiting its decision
func (s *SubmissionService) ListAssigned(ctx context.Context, stationID uint) ([]*models.SubmissionResponse, error) {
	submissions, err := s.submissionRepo.ListAssignedPending(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return toResponses(submissions), nil
}

// ListHistory lists a station's already-decided submissions
func (s *SubmissionService) ListHistory(ctx context.Context, stationID uint) ([]*models.SubmissionResponse, error) {
	submissions, err := s.submissionRepo.ListDecidedByStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return toResponses(submissions), nil
}

// List lists current submissions for the admin dashboard
func (s *SubmissionService) List(ctx context.Context, offset, limit int) ([]*models.SubmissionResponse, int64, error) {
	submissions, total, err := s.submissionRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(submissions), total, nil
}

// SearchRow is one flattened result row for the admin driver search
type SearchRow struct {
	SubmissionID uint   `json:"submission_id"`
	DriverID     uint   `json:"driver_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	FatherName   string `json:"father_name"`
	Mobile       string `json:"mobile"`
	AadhaarNum   string `json:"aadhaar_num"`
}

// Search finds drivers by identifying fields, one row per driver (the
// driver's current submission only).
func (s *SubmissionService) Search(ctx context.Context, filter *repositories.SearchFilter) ([]*SearchRow, error) {
	submissions, err := s.submissionRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]*SearchRow, 0, len(submissions))
	for _, sub := range submissions {
		rows = append(rows, &SearchRow{
			SubmissionID: sub.ID,
			DriverID:     sub.DriverID,
			FirstName:    sub.Data.FirstName,
			LastName:     sub.Data.LastName,
			FatherName:   sub.Data.FatherName,
			Mobile:       sub.Data.Mobile,
			AadhaarNum:   sub.Data.AadhaarNum,
		})
	}
	return rows, nil
}

// DriverDetail returns the full current submission for one driver
func (s *SubmissionService) DriverDetail(ctx context.Context, driverID uint) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetCurrentByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

// GetByID returns one submission with relations preloaded
func (s *SubmissionService) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

func (s *SubmissionService) mapTransitionErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSubmissionNotFound
	}
	return err
}

func toResponses(submissions []*models.Submission) []*models.SubmissionResponse {
	responses := make([]*models.SubmissionResponse, 0, len(submissions))
	for _, sub := range submissions {
		responses = append(responses, sub.ToResponse())
	}
	return responses
}
