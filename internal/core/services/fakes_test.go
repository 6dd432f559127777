package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"rtd-driverpass/internal/adapters/persistence/models"
	"rtd-driverpass/internal/adapters/persistence/repositories"
	"rtd-driverpass/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory repository fakes. Writes store copies and reads return copies,
// so a failed Transition mutate leaves the stored row untouched, mirroring
// the real transaction rollback.

type fakeUserRepo struct {
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) ListByRoles(_ context.Context, roles ...string) ([]*models.User, error) {
	var out []*models.User
	for _, user := range r.users {
		for _, role := range roles {
			if user.Role == role {
				cp := *user
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ClearExpiredLocks(_ context.Context) (int64, error) {
	var cleared int64
	now := time.Now()
	for _, user := range r.users {
		if user.LockedUntil != nil && !user.LockedUntil.After(now) {
			user.LockedUntil = nil
			cleared++
		}
	}
	return cleared, nil
}

type fakeRefreshTokenRepo struct {
	nextID uint
	tokens []*models.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.nextID++
	token.ID = r.nextID
	cp := *token
	r.tokens = append(r.tokens, &cp)
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash {
			cp := *token
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	for _, token := range r.tokens {
		if token.ID == id {
			now := time.Now()
			token.RevokedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	kept := r.tokens[:0]
	for _, token := range r.tokens {
		if !token.IsExpired() {
			kept = append(kept, token)
		}
	}
	deleted := int64(len(r.tokens) - len(kept))
	r.tokens = kept
	return deleted, nil
}

type fakeSubmissionRepo struct {
	nextID      uint
	nextAuditID uint
	subs        map[uint]*models.Submission
	audits      []*models.AuditEntry
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: map[uint]*models.Submission{}}
}

func (r *fakeSubmissionRepo) appendAudit(entry *models.AuditEntry) {
	r.nextAuditID++
	entry.ID = r.nextAuditID
	entry.CreatedAt = time.Now()
	cp := *entry
	r.audits = append(r.audits, &cp)
}

// actionsFor returns the recorded audit actions for a submission in order.
func (r *fakeSubmissionRepo) actionsFor(submissionID uint) []string {
	var actions []string
	for _, entry := range r.audits {
		if entry.SubmissionID == submissionID {
			actions = append(actions, entry.Action)
		}
	}
	return actions
}

func (r *fakeSubmissionRepo) CreateWithAudit(_ context.Context, submission *models.Submission, entry *models.AuditEntry) error {
	// Same guard the real repository runs under its row lock: a verified
	// current row is frozen and must not be demoted.
	for _, sub := range r.subs {
		if sub.DriverID == submission.DriverID && sub.IsCurrent {
			if sub.FinalStatus == domain.FinalVerified {
				return domain.ErrAlreadyVerified
			}
			sub.IsCurrent = false
		}
	}

	r.nextID++
	submission.ID = r.nextID
	submission.IsCurrent = true
	submission.CreatedAt = time.Now()
	cp := *submission
	r.subs[submission.ID] = &cp

	entry.SubmissionID = submission.ID
	r.appendAudit(entry)
	return nil
}

func (r *fakeSubmissionRepo) Transition(_ context.Context, id uint, mutate func(*models.Submission) (*models.AuditEntry, error)) (*models.Submission, error) {
	stored, ok := r.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	cp := *stored
	entry, err := mutate(&cp)
	if err != nil {
		return nil, err
	}

	cp.UpdatedAt = time.Now()
	saved := cp
	r.subs[id] = &saved

	entry.SubmissionID = id
	r.appendAudit(entry)
	return &cp, nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (*models.Submission, error) {
	sub, ok := r.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeSubmissionRepo) GetByPublicID(_ context.Context, publicID string) (*models.Submission, error) {
	for _, sub := range r.subs {
		if sub.PublicID == publicID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) GetCurrentByDriver(_ context.Context, driverID uint) (*models.Submission, error) {
	for _, sub := range r.subs {
		if sub.DriverID == driverID && sub.IsCurrent {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) List(_ context.Context, offset, limit int) ([]*models.Submission, int64, error) {
	var current []*models.Submission
	for _, sub := range r.subs {
		if sub.IsCurrent {
			cp := *sub
			current = append(current, &cp)
		}
	}
	sort.Slice(current, func(i, j int) bool { return current[i].ID > current[j].ID })

	total := int64(len(current))
	if offset >= len(current) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(current) {
		end = len(current)
	}
	return current[offset:end], total, nil
}

func (r *fakeSubmissionRepo) ListAssignedPending(_ context.Context, stationID uint) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, sub := range r.subs {
		if sub.IsCurrent && sub.StationID != nil && *sub.StationID == stationID && sub.Status == domain.StatusPending {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSubmissionRepo) ListDecidedByStation(_ context.Context, stationID uint) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, sub := range r.subs {
		if sub.StationID != nil && *sub.StationID == stationID && sub.Status != domain.StatusPending {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSubmissionRepo) Search(_ context.Context, filter *repositories.SearchFilter) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, sub := range r.subs {
		if !sub.IsCurrent {
			continue
		}
		if filter.Mobile != "" && sub.Data.Mobile != filter.Mobile {
			continue
		}
		if filter.AadhaarNum != "" && sub.Data.AadhaarNum != filter.AadhaarNum {
			continue
		}
		if filter.FirstName != "" && !hasPrefixFold(sub.Data.FirstName, filter.FirstName) {
			continue
		}
		if filter.FatherName != "" && !hasPrefixFold(sub.Data.FatherName, filter.FatherName) {
			continue
		}
		cp := *sub
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSubmissionRepo) ListActiveQRPaths(_ context.Context) ([]string, error) {
	var paths []string
	for _, sub := range r.subs {
		if sub.IsCurrent && sub.FinalStatus == domain.FinalVerified && sub.QRCodePath != "" {
			paths = append(paths, sub.QRCodePath)
		}
	}
	return paths, nil
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

type fakeAuditRepo struct {
	nextID  uint
	entries []*models.AuditEntry
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *models.AuditEntry) error {
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeAuditRepo) ListBySubmission(_ context.Context, submissionID uint) ([]*models.AuditEntry, error) {
	var out []*models.AuditEntry
	for _, entry := range r.entries {
		if entry.SubmissionID == submissionID {
			cp := *entry
			out = append(out, &cp)
		}
	}
	return out, nil
}
