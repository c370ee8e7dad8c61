package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/complaintdesk/backend/internal/middleware"
	"github.com/complaintdesk/backend/internal/models"
	"github.com/complaintdesk/backend/internal/services"
	"github.com/complaintdesk/backend/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ComplaintHandler struct {
	service   services.ComplaintService
	validator *validator.Validate
}

func NewComplaintHandler(service services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{
		service:   service,
		validator: validator.New(),
	}
}

func parseComplaintID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid complaint id %q", c.Params("id"))
	}
	return uint(id), nil
}

// serviceError maps service failures onto HTTP status codes.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrComplaintNotFound),
		errors.Is(err, services.ErrAttachmentNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrReferenceNotFound),
		errors.Is(err, services.ErrAssigneeNotFound):
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrInvalidCoordinates):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrStorageUnavailable):
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
}

// Complaint CRUD

func (h *ComplaintHandler) Create(c *fiber.Ctx) error {
	var req models.ComplaintCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	complaint, err := h.service.CreateComplaint(c.Context(), &req, middleware.ActorID(c))
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "Complaint created", models.ToComplaintResponse(complaint))
}

func (h *ComplaintHandler) Update(c *fiber.Ctx) error {
	id, err := parseComplaintID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	var req models.ComplaintUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	complaint, err := h.service.UpdateComplaint(c.Context(), id, &req, middleware.ActorID(c))
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Complaint updated", models.ToComplaintResponse(complaint))
}

func (h *ComplaintHandler) Get(c *fiber.Ctx) error {
	id, err := parseComplaintID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	complaint, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Complaint retrieved", models.ToComplaintResponse(complaint))
}

func (h *ComplaintHandler) List(c *fiber.Ctx) error {
	complaints, err := h.service.GetAll(c.Context())
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Complaints retrieved", models.ToComplaintResponses(complaints))
}

// Search

// Search takes the template as a JSON body.
func (h *ComplaintHandler) Search(c *fiber.Ctx) error {
	var template models.ComplaintSearchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&template); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	return h.search(c, &template)
}

// SearchQuery takes the template from the crn, complaint_type, department and
// status query parameters.
func (h *ComplaintHandler) SearchQuery(c *fiber.Ctx) error {
	template := models.ComplaintSearchRequest{}

	if crn := c.Query("crn"); crn != "" {
		template.CRN = &crn
	}
	if name := c.Query("complaint_type"); name != "" {
		template.ComplaintType = &models.NameFilter{Name: name}
	}
	if name := c.Query("department"); name != "" {
		template.Department = &models.NameFilter{Name: name}
	}
	if name := c.Query("status"); name != "" {
		template.Status = &models.NameFilter{Name: name}
	}

	return h.search(c, &template)
}

func (h *ComplaintHandler) search(c *fiber.Ctx, template *models.ComplaintSearchRequest) error {
	complaints, err := h.service.Search(c.Context(), template)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Complaints retrieved", models.ToComplaintResponses(complaints))
}

// Attachments

func (h *ComplaintHandler) UploadAttachment(c *fiber.Ctx) error {
	id, err := parseComplaintID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No file uploaded")
	}

	src, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read file")
	}
	defer src.Close()

	attachment, err := h.service.AddAttachment(c.Context(), id, &services.AttachmentUpload{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Content:     src,
	}, middleware.ActorID(c))
	if err != nil {
		return serviceError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "Attachment uploaded", models.ToComplaintAttachmentResponse(attachment))
}

func (h *ComplaintHandler) ListAttachments(c *fiber.Ctx) error {
	id, err := parseComplaintID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	attachments, err := h.service.ListAttachments(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	resp := make([]models.ComplaintAttachmentResponse, len(attachments))
	for i := range attachments {
		resp[i] = models.ToComplaintAttachmentResponse(&attachments[i])
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Attachments retrieved", resp)
}

func (h *ComplaintHandler) DownloadAttachment(c *fiber.Ctx) error {
	attachmentID, err := uuid.Parse(c.Params("attachment_id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid attachment ID")
	}

	attachment, file, err := h.service.GetAttachment(c.Context(), attachmentID)
	if err != nil {
		return serviceError(c, err)
	}

	if attachment.MimeType != "" {
		c.Set(fiber.HeaderContentType, attachment.MimeType)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	return c.SendStream(file)
}
