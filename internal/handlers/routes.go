package handlers

import (
	"errors"

	"github.com/complaintdesk/backend/internal/middleware"
	"github.com/complaintdesk/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the v1 API on router.
func RegisterRoutes(router fiber.Router, complaintHandler *ComplaintHandler, referenceHandler *ReferenceHandler, actor *middleware.ActorMiddleware) {
	v1 := router.Group("/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return utils.SuccessResponse(c, fiber.StatusOK, "OK", fiber.Map{"status": "healthy"})
	})

	// Complaint routes
	complaints := v1.Group("/complaints", actor.Resolve())
	complaints.Post("/", complaintHandler.Create)
	complaints.Get("/", complaintHandler.List)
	complaints.Post("/search", complaintHandler.Search)
	complaints.Get("/search", complaintHandler.SearchQuery)
	complaints.Get("/:id", complaintHandler.Get)
	complaints.Put("/:id", complaintHandler.Update)
	complaints.Post("/:id/attachments", complaintHandler.UploadAttachment)
	complaints.Get("/:id/attachments", complaintHandler.ListAttachments)

	attachments := v1.Group("/attachments", actor.Resolve())
	attachments.Get("/:attachment_id", complaintHandler.DownloadAttachment)

	// Reference data
	v1.Get("/complaint-types", referenceHandler.ListComplaintTypes)
	v1.Get("/complaint-statuses", referenceHandler.ListComplaintStatuses)
	v1.Get("/departments", referenceHandler.ListDepartments)
	v1.Get("/boundaries", referenceHandler.ListBoundaries)
	v1.Get("/employees", referenceHandler.ListEmployees)
}

// ErrorHandler renders errors that escape a handler in the response envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return utils.ErrorResponse(c, code, message)
}
