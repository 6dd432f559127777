package domain

// Role represents a user role in the system
type Role string

const (
	RoleDriver  Role = "driver"
	RoleStation Role = "station"
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDriver, RoleStation, RoleOfficer, RoleAdmin:
		return true
	}
	return false
}

// Provisionable reports whether an admin may create accounts with this role.
// Drivers self-register; the admin account is seeded at startup.
func (r Role) Provisionable() bool {
	return r == RoleStation || r == RoleOfficer
}

// Workflow status (station-facing axis)
const (
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusVerified    = "verified"
	StatusRejected    = "rejected"
)

// Final status (admin-facing terminal axis)
const (
	FinalPending  = "pending"
	FinalVerified = "verified"
	FinalRejected = "rejected"
)

// Audit action tags, one per state-changing transition
const (
	ActionSubmitted         = "submitted"
	ActionUpdatedSubmission = "updated_submission"
	ActionAssignedToStation = "assigned_to_station"
	ActionStationVerified   = "station_verified"
	ActionStationRejected   = "station_rejected"
	ActionAdminVerified     = "admin_verified"
	ActionAdminRejected     = "admin_rejected"
	ActionOfficerView       = "officer_view"
)
