package handlers

import (
	"github.com/complaintdesk/backend/internal/models"
	"github.com/complaintdesk/backend/internal/services"
	"github.com/complaintdesk/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// ReferenceHandler serves the read-only reference data complaints point at.
type ReferenceHandler struct {
	types       services.ComplaintTypeService
	statuses    services.ComplaintStatusService
	departments services.DepartmentService
	employees   services.EmployeeService
	boundaries  services.BoundaryService
}

func NewReferenceHandler(lookups services.Lookups) *ReferenceHandler {
	return &ReferenceHandler{
		types:       lookups.Types,
		statuses:    lookups.Statuses,
		departments: lookups.Departments,
		employees:   lookups.Employees,
		boundaries:  lookups.Boundaries,
	}
}

func (h *ReferenceHandler) ListComplaintTypes(c *fiber.Ctx) error {
	types, err := h.types.List(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := make([]models.ComplaintTypeResponse, len(types))
	for i := range types {
		resp[i] = models.ToComplaintTypeResponse(&types[i])
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Complaint types retrieved", resp)
}

func (h *ReferenceHandler) ListComplaintStatuses(c *fiber.Ctx) error {
	statuses, err := h.statuses.List(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := make([]models.ComplaintStatusResponse, len(statuses))
	for i := range statuses {
		resp[i] = models.ToComplaintStatusResponse(&statuses[i])
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Complaint statuses retrieved", resp)
}

func (h *ReferenceHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.departments.List(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := make([]models.DepartmentResponse, len(departments))
	for i := range departments {
		resp[i] = models.ToDepartmentResponse(&departments[i])
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Departments retrieved", resp)
}

func (h *ReferenceHandler) ListEmployees(c *fiber.Ctx) error {
	employees, err := h.employees.List(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := make([]models.EmployeeResponse, len(employees))
	for i := range employees {
		resp[i] = models.ToEmployeeResponse(&employees[i])
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Employees retrieved", resp)
}

func (h *ReferenceHandler) ListBoundaries(c *fiber.Ctx) error {
	boundaries, err := h.boundaries.List(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := make([]models.BoundaryResponse, len(boundaries))
	for i := range boundaries {
		resp[i] = models.ToBoundaryResponse(&boundaries[i])
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Boundaries retrieved", resp)
}
