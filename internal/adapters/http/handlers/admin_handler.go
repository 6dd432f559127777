package handlers

import (
	"errors"
	"strconv"

	"rtd-driverpass/internal/adapters/persistence/repositories"
	"rtd-driverpass/internal/core/domain"
	"rtd-driverpass/internal/core/services"
	"rtd-driverpass/internal/pkg/pagination"
	"rtd-driverpass/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin endpoints: account provisioning, station
// assignment, final disposition, and driver search.
type AdminHandler struct {
	authService       *services.AuthService
	submissionService *services.SubmissionService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *services.AuthService, submissionService *services.SubmissionService) *AdminHandler {
	return &AdminHandler{
		authService:       authService,
		submissionService: submissionService,
	}
}

// ProvisionRequest represents an account provisioning request body
type ProvisionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AssignRequest represents a station assignment request body
type AssignRequest struct {
	StationID uint `json:"station_id"`
}

// FinalizeRequest represents the admin's final verdict request body
type FinalizeRequest struct {
	FinalStatus string `json:"final_status"` // "verified" or "rejected"
	Reason      string `json:"reason,omitempty"`
}

// Provision creates a station or officer account
// @Summary Provision account
// @Description Create a police station or officer account
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProvisionRequest true "Account data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users [post]
func (h *AdminHandler) Provision(c *fiber.Ctx) error {
	var req ProvisionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	role := domain.Role(req.Role)
	if !role.Provisionable() {
		return response.BadRequest(c, `Role must be either "station" or "officer".`)
	}
	if req.Username == "" || req.Password == "" {
		return response.BadRequest(c, "Username and password are required.")
	}

	createdBy, _ := c.Locals("username").(string)

	user, err := h.authService.Provision(c.Context(), req.Username, req.Password, role, createdBy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			return response.Conflict(c, "Username already taken.")
		case errors.Is(err, services.ErrMissingFields), errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Invalid account data")
		default:
			return response.InternalServerError(c, "Failed to create account")
		}
	}

	return response.Created(c, "Account created successfully", fiber.Map{
		"user": user,
	})
}

// ListUsers lists provisioned station and officer accounts
// @Summary List provisioned accounts
// @Description List all station and officer accounts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListProvisioned(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch accounts")
	}

	return response.Success(c, "Accounts retrieved", users)
}

// ListSubmissions lists all current submissions
// @Summary List submissions
// @Description List all current submissions with pagination
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/submissions [get]
func (h *AdminHandler) ListSubmissions(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	submissions, total, err := h.submissionService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch submissions")
	}

	return response.Success(c, "Submissions retrieved", pagination.NewResponse(submissions, params, total))
}

// Assign routes a submission to a station for review
// @Summary Assign submission to station
// @Description Assign a submission to a police station for first-stage review
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param body body AssignRequest true "Station"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/submissions/{id}/station [put]
func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	submissionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid submission id")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.StationID == 0 {
		return response.BadRequest(c, "Station ID is required.")
	}

	submission, err := h.submissionService.Assign(c.Context(), uint(submissionID), req.StationID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStationNotFound):
			return response.NotFound(c, "Station not found or invalid.")
		case errors.Is(err, services.ErrSubmissionNotFound):
			return response.NotFound(c, "Submission not found.")
		default:
			return response.InternalServerError(c, "Failed to assign submission")
		}
	}

	return response.Success(c, "Submission successfully assigned to station.", fiber.Map{
		"submission": submission.ToResponse(),
	})
}

// Finalize records the admin's final verdict and issues the token on approval
// @Summary Final verify or reject
// @Description Record the admin's terminal decision; approval issues the verification token
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param body body FinalizeRequest true "Verdict"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/submissions/{id}/final [put]
func (h *AdminHandler) Finalize(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	submissionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid submission id")
	}

	var req FinalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	submission, err := h.submissionService.Finalize(c.Context(), uint(submissionID), req.FinalStatus, req.Reason, adminID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidVerdict):
			return response.BadRequest(c, "Invalid finalStatus value.")
		case errors.Is(err, services.ErrAlreadyVerified):
			return response.Conflict(c, "Submission already verified.")
		case errors.Is(err, services.ErrSubmissionNotFound):
			return response.NotFound(c, "Submission not found.")
		default:
			return response.InternalServerError(c, "Failed to record verdict")
		}
	}

	return response.Success(c, "Submission "+req.FinalStatus, fiber.Map{
		"submission": submission.ToResponse(),
	})
}

// SearchDrivers finds drivers by identifying fields, one row per driver
// @Summary Search drivers
// @Description Search by name/father-name prefix or exact mobile/aadhaar number
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/drivers/search [get]
func (h *AdminHandler) SearchDrivers(c *fiber.Ctx) error {
	filter := &repositories.SearchFilter{
		FirstName:  c.Query("firstName"),
		FatherName: c.Query("fatherName"),
		Mobile:     c.Query("mobile"),
		AadhaarNum: c.Query("aadhaarNum"),
	}

	rows, err := h.submissionService.Search(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Error searching drivers")
	}

	return response.Success(c, "Search results", rows)
}

// DriverDetail returns the full current submission for one driver
// @Summary Driver details
// @Description Full current submission for a driver
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param driverId path int true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/drivers/{driverId} [get]
func (h *AdminHandler) DriverDetail(c *fiber.Ctx) error {
	driverID, err := strconv.ParseUint(c.Params("driverId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid driver id")
	}

	submission, err := h.submissionService.DriverDetail(c.Context(), uint(driverID))
	if err != nil {
		if errors.Is(err, services.ErrSubmissionNotFound) {
			return response.NotFound(c, "Not found")
		}
		return response.InternalServerError(c, "Error fetching driver details")
	}

	return response.Success(c, "Driver details", fiber.Map{
		"submission": submission.ToResponse(),
	})
}
