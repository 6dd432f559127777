package handlers

import (
	"errors"
	"path/filepath"
	"strconv"

	"rtd-driverpass/internal/adapters/persistence/models"
	"rtd-driverpass/internal/config"
	"rtd-driverpass/internal/core/domain"
	"rtd-driverpass/internal/core/services"
	"rtd-driverpass/internal/pkg/response"
	"rtd-driverpass/internal/pkg/upload"

	"github.com/gofiber/fiber/v2"
)

// DriverHandler handles driver-facing submission endpoints
type DriverHandler struct {
	submissionService *services.SubmissionService
	cfg               *config.Config
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(submissionService *services.SubmissionService, cfg *config.Config) *DriverHandler {
	return &DriverHandler{
		submissionService: submissionService,
		cfg:               cfg,
	}
}

// Submit handles a driver's credential submission or resubmission
// @Summary Submit credentials
// @Description Submit or resubmit the driver's credential packet with document uploads
// @Tags Driver
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /driver/submissions [post]
func (h *DriverHandler) Submit(c *fiber.Ctx) error {
	driverID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data := models.SubmissionData{
		FirstName:      c.FormValue("firstName"),
		LastName:       c.FormValue("lastName"),
		DOB:            c.FormValue("dob"),
		Mobile:         c.FormValue("mobile"),
		AadhaarNum:     c.FormValue("aadhaarNum"),
		FatherName:     c.FormValue("fatherName"),
		Address:        c.FormValue("address"),
		NearestStation: c.FormValue("nearestStation"),
		VehicleNum:     c.FormValue("vehicleNum"),
		LicenseNum:     c.FormValue("licenseNum"),
		InsuranceNum:   c.FormValue("insuranceNum"),
		RouteStart:     c.FormValue("routeStart"),
		RouteEnd:       c.FormValue("routeEnd"),
		CrimeRecord:    c.FormValue("crimeHistory") == "yes",
		CrimeDetails:   c.FormValue("crimeDetails"),
	}

	// Store whichever document slots were uploaded; the service carries
	// previous files forward for the slots left empty.
	saved := map[string]*string{
		"photo":        &data.Photo,
		"aadhaarDoc":   &data.AadhaarDoc,
		"rcDoc":        &data.RCDoc,
		"licenseDoc":   &data.LicenseDoc,
		"insuranceDoc": &data.InsuranceDoc,
		"pollutionDoc": &data.PollutionDoc,
	}
	for field, target := range saved {
		name, err := upload.SaveField(c, field, h.cfg.UploadPath)
		if err != nil {
			if errors.Is(err, upload.ErrUnsupportedType) {
				return response.BadRequest(c, "Unsupported file type for "+field)
			}
			return response.InternalServerError(c, "Failed to store uploaded file")
		}
		*target = name
	}

	submission, err := h.submissionService.Submit(c.Context(), driverID, &services.SubmitInput{Data: data})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyVerified):
			return response.Conflict(c, "Submission already verified, cannot update.")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "First name and mobile are required")
		default:
			return response.InternalServerError(c, "Failed to save submission")
		}
	}

	return response.Success(c, "Submission saved", fiber.Map{
		"submission": submission.ToResponse(),
	})
}

// GetMine returns the driver's current submission and review state
// @Summary Get my submission
// @Description Get the driver's current submission, status, and rejection reasons
// @Tags Driver
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /driver/submissions/me [get]
func (h *DriverHandler) GetMine(c *fiber.Ctx) error {
	driverID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	submission, err := h.submissionService.GetMine(c.Context(), driverID)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionNotFound) {
			return response.NotFound(c, "No submission found")
		}
		return response.InternalServerError(c, "Failed to fetch submission")
	}

	return response.Success(c, "Submission retrieved", fiber.Map{
		"data":           submission.Data,
		"status":         submission.FinalStatus,
		"station_reason": submission.StationReason,
		"final_reason":   submission.FinalReason,
		"qr_code_path":   submission.QRCodePath,
	})
}

// GetQR streams the driver's own verification token image
// @Summary Get my verification token
// @Description Download the QR token image for the driver's verified submission
// @Tags Driver
// @Produce png
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 404 {object} response.Response
// @Router /driver/submissions/{id}/qr [get]
func (h *DriverHandler) GetQR(c *fiber.Ctx) error {
	driverID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	submissionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid submission id")
	}

	name, err := h.submissionService.QRFile(c.Context(), driverID, uint(submissionID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Not your submission")
		case errors.Is(err, services.ErrSubmissionNotFound):
			return response.NotFound(c, "QR code not found")
		default:
			return response.InternalServerError(c, "Failed to fetch QR code")
		}
	}

	return c.SendFile(filepath.Join(h.cfg.UploadPath, name))
}
