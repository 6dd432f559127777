package handlers

import (
	"errors"
	"strconv"

	"rtd-driverpass/internal/core/domain"
	"rtd-driverpass/internal/core/services"
	"rtd-driverpass/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StationHandler handles station review endpoints
type StationHandler struct {
	submissionService *services.SubmissionService
}

// NewStationHandler creates a new station handler
func NewStationHandler(submissionService *services.SubmissionService) *StationHandler {
	return &StationHandler{submissionService: submissionService}
}

// DecisionRequest represents a station's verdict on a submission
type DecisionRequest struct {
	Status string `json:"status"` // "verified" or "rejected"
	Reason string `json:"reason,omitempty"`
}

// ListAssignments lists submissions awaiting this station's decision
// @Summary List assignments
// @Description List submissions assigned to this station and still pending
// @Tags Station
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /station/assignments [get]
func (h *StationHandler) ListAssignments(c *fiber.Ctx) error {
	stationID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	submissions, err := h.submissionService.ListAssigned(c.Context(), stationID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}

	return response.Success(c, "Assignments retrieved", submissions)
}

// Decide records the station's approve/reject verdict
// @Summary Decide on a submission
// @Description Approve or reject an assigned submission
// @Tags Station
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param body body DecisionRequest true "Verdict"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /station/submissions/{id}/decision [put]
func (h *StationHandler) Decide(c *fiber.Ctx) error {
	stationID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	submissionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid submission id")
	}

	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Status != domain.StatusVerified && req.Status != domain.StatusRejected {
		return response.BadRequest(c, "Invalid status")
	}

	submission, err := h.submissionService.StationDecide(
		c.Context(), uint(submissionID), stationID, req.Status == domain.StatusVerified, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAssigned):
			return response.Forbidden(c, "Not authorized")
		case errors.Is(err, services.ErrSubmissionNotFound):
			return response.NotFound(c, "Submission not found")
		default:
			return response.InternalServerError(c, "Failed to record decision")
		}
	}

	return response.Success(c, "Submission "+req.Status+" by station", fiber.Map{
		"submission": submission.ToResponse(),
	})
}

// ListHistory lists the station's already-decided submissions
// @Summary List decision history
// @Description List submissions this station has already decided on
// @Tags Station
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /station/history [get]
func (h *StationHandler) ListHistory(c *fiber.Ctx) error {
	stationID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	submissions, err := h.submissionService.ListHistory(c.Context(), stationID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch history")
	}

	return response.Success(c, "History retrieved", submissions)
}
