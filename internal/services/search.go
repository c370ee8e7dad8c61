package services

import (
	"strings"

	"github.com/complaintdesk/backend/internal/models"
)

// BuildSearchConditions turns a search template into the list of substring
// conditions to AND together. Absent or blank template fields contribute
// nothing; an empty template yields no conditions and so matches everything.
func BuildSearchConditions(template *models.ComplaintSearchRequest) []models.SearchCondition {
	if template == nil {
		return nil
	}

	var conditions []models.SearchCondition
	add := func(field models.SearchField, term string) {
		if isBlank(term) {
			return
		}
		conditions = append(conditions, models.SearchCondition{Field: field, Term: term})
	}

	if template.CRN != nil {
		add(models.SearchFieldCRN, *template.CRN)
	}
	if template.ComplaintType != nil {
		add(models.SearchFieldComplaintTypeName, template.ComplaintType.Name)
	}
	if template.Department != nil {
		add(models.SearchFieldDepartmentName, template.Department.Name)
	}
	if template.Status != nil {
		add(models.SearchFieldStatusName, template.Status.Name)
	}

	return conditions
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
