package handlers

import (
	"errors"
	"strconv"

	"rtd-driverpass/internal/core/domain"
	"rtd-driverpass/internal/core/services"
	"rtd-driverpass/internal/pkg/qr"
	"rtd-driverpass/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OfficerHandler handles field verification: redeeming scanned QR codes
// and reading a submission's audit trail.
type OfficerHandler struct {
	tokenService *services.TokenService
	auditService *services.AuditService
}

// NewOfficerHandler creates a new officer handler
func NewOfficerHandler(tokenService *services.TokenService, auditService *services.AuditService) *OfficerHandler {
	return &OfficerHandler{
		tokenService: tokenService,
		auditService: auditService,
	}
}

// ScanRequest is the decoded content of a scanned QR code
type ScanRequest struct {
	SubmissionID string `json:"submission_id"`
}

// Scan redeems a scanned QR payload for the driver's verified record
// @Summary Redeem QR payload
// @Description Look up a driver's verified credentials from a scanned QR code
// @Tags Officer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScanRequest true "Scanned payload"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /officer/scan [post]
func (h *OfficerHandler) Scan(c *fiber.Ctx) error {
	officerID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.tokenService.Redeem(c.Context(), qr.Payload{SubmissionID: req.SubmissionID}, officerID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Submission ID is required.")
		case errors.Is(err, services.ErrSubmissionNotFound):
			return response.NotFound(c, "No submission found")
		case errors.Is(err, services.ErrNotVerified):
			return response.Forbidden(c, "Data not verified")
		default:
			return response.InternalServerError(c, "Failed to verify QR code")
		}
	}

	return response.Success(c, "Verification successful", result)
}

// Trail returns the chronological audit trail for a submission
// @Summary Audit trail
// @Description Chronological list of every recorded action on a submission
// @Tags Officer
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 200 {object} response.Response
// @Router /officer/submissions/{id}/audit [get]
func (h *OfficerHandler) Trail(c *fiber.Ctx) error {
	submissionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid submission id")
	}

	entries, err := h.auditService.Trail(c.Context(), uint(submissionID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch audit trail")
	}

	return response.Success(c, "Audit trail retrieved", entries)
}
