package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Users & Sessions
// ============================================================

// User represents users table. Usernames are stored uppercase so
// uniqueness is case-insensitive. Role never changes after creation.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password     string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:20;not null" json:"role"`
	CreatedBy    *string    `gorm:"size:50" json:"created_by,omitempty"`
	FailedLogins int        `gorm:"default:0" json:"-"`
	LockedUntil  *time.Time `json:"-"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsLocked reports whether the account lockout window is still open.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedBy: u.CreatedBy,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Submissions
// ============================================================

// SubmissionData holds the driver's credential packet. Document fields
// store upload file names only; the files live with the static-file layer.
type SubmissionData struct {
	FirstName      string `gorm:"size:100" json:"first_name"`
	LastName       string `gorm:"size:100" json:"last_name"`
	DOB            string `gorm:"size:20" json:"dob"`
	Mobile         string `gorm:"size:20;index" json:"mobile"`
	Photo          string `gorm:"size:100" json:"photo"`
	AadhaarNum     string `gorm:"size:20;index" json:"aadhaar_num"`
	AadhaarDoc     string `gorm:"size:100" json:"aadhaar_doc"`
	FatherName     string `gorm:"size:100" json:"father_name"`
	Address        string `gorm:"type:text" json:"address"`
	NearestStation string `gorm:"size:100" json:"nearest_station"`
	VehicleNum     string `gorm:"size:20" json:"vehicle_num"`
	RCDoc          string `gorm:"size:100" json:"rc_doc"`
	LicenseNum     string `gorm:"size:30" json:"license_num"`
	LicenseDoc     string `gorm:"size:100" json:"license_doc"`
	InsuranceNum   string `gorm:"size:30" json:"insurance_num"`
	InsuranceDoc   string `gorm:"size:100" json:"insurance_doc"`
	RouteStart     string `gorm:"size:100" json:"route_start"`
	RouteEnd       string `gorm:"size:100" json:"route_end"`
	PollutionDoc   string `gorm:"size:100" json:"pollution_doc"`
	CrimeRecord    bool   `gorm:"default:false" json:"crime_record"`
	CrimeDetails   string `gorm:"type:text" json:"crime_details"`
}

// Submission represents submissions table. Two independent status axes:
// Status follows the station's review, FinalStatus is the admin's terminal
// call. IsCurrent marks the one actionable row per driver; older rows are
// kept for history only.
type Submission struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PublicID  string `gorm:"uniqueIndex;size:36;not null" json:"public_id"`
	DriverID  uint   `gorm:"index;not null" json:"driver_id"`
	IsCurrent bool   `gorm:"index;default:true" json:"-"`

	Data SubmissionData `gorm:"embedded" json:"data"`

	Status          string `gorm:"size:20;not null;default:'pending'" json:"status"`
	StationID       *uint  `gorm:"index" json:"station_id"`
	StationVerified bool   `gorm:"default:false" json:"station_verified"`
	StationReason   string `gorm:"size:255;default:''" json:"station_reason"`

	FinalStatus string `gorm:"size:20;not null;default:'pending'" json:"final_status"`
	FinalReason string `gorm:"size:255;default:''" json:"final_reason"`
	QRCodePath  string `gorm:"size:100;default:''" json:"qr_code_path"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Driver  *User `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	Station *User `gorm:"foreignKey:StationID" json:"station,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// SubmissionResponse DTO
type SubmissionResponse struct {
	ID              uint           `json:"id"`
	PublicID        string         `json:"public_id"`
	DriverID        uint           `json:"driver_id"`
	DriverName      string         `json:"driver_name,omitempty"`
	Data            SubmissionData `json:"data"`
	Status          string         `json:"status"`
	StationID       *uint          `json:"station_id"`
	StationName     string         `json:"station_name,omitempty"`
	StationVerified bool           `json:"station_verified"`
	StationReason   string         `json:"station_reason,omitempty"`
	FinalStatus     string         `json:"final_status"`
	FinalReason     string         `json:"final_reason,omitempty"`
	QRCodePath      string         `json:"qr_code_path,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (s *Submission) ToResponse() *SubmissionResponse {
	resp := &SubmissionResponse{
		ID:              s.ID,
		PublicID:        s.PublicID,
		DriverID:        s.DriverID,
		Data:            s.Data,
		Status:          s.Status,
		StationID:       s.StationID,
		StationVerified: s.StationVerified,
		StationReason:   s.StationReason,
		FinalStatus:     s.FinalStatus,
		FinalReason:     s.FinalReason,
		QRCodePath:      s.QRCodePath,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}

	if s.Driver != nil {
		resp.DriverName = s.Driver.Username
	}
	if s.Station != nil {
		resp.StationName = s.Station.Username
	}

	return resp
}

// ============================================================
// Audit trail
// ============================================================

// AuditEntry represents audit_entries table. Rows are append-only and
// never updated; CreatedAt ascending is the canonical read order.
type AuditEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"index;not null" json:"submission_id"`
	Action       string    `gorm:"size:50;not null" json:"action"`
	ActorID      uint      `gorm:"not null" json:"actor_id"`
	Details      string    `gorm:"type:text" json:"details"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}

// AuditEntryResponse DTO
type AuditEntryResponse struct {
	ID           uint      `json:"id"`
	SubmissionID uint      `json:"submission_id"`
	Action       string    `json:"action"`
	ActorID      uint      `json:"actor_id"`
	ActorName    string    `json:"actor_name,omitempty"`
	ActorRole    string    `json:"actor_role,omitempty"`
	Details      string    `json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}

func (e *AuditEntry) ToResponse() *AuditEntryResponse {
	resp := &AuditEntryResponse{
		ID:           e.ID,
		SubmissionID: e.SubmissionID,
		Action:       e.Action,
		ActorID:      e.ActorID,
		Details:      e.Details,
		CreatedAt:    e.CreatedAt,
	}

	if e.Actor != nil {
		resp.ActorName = e.Actor.Username
		resp.ActorRole = e.Actor.Role
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Submission{},
		&AuditEntry{},
	)
}
