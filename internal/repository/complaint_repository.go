package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/complaintdesk/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComplaintRepository interface {
	// Complaint persistence
	Create(ctx context.Context, complaint *models.Complaint) error
	Save(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id uint) (*models.Complaint, error)
	FindAll(ctx context.Context) ([]models.Complaint, error)
	Search(ctx context.Context, conditions []models.SearchCondition) ([]models.Complaint, error)
	FindOpenWithSLA(ctx context.Context) ([]models.Complaint, error)

	// Attachments
	CreateAttachment(ctx context.Context, attachment *models.ComplaintAttachment) error
	FindAttachmentByID(ctx context.Context, id uuid.UUID) (*models.ComplaintAttachment, error)
	ListAttachments(ctx context.Context, complaintID uint) ([]models.ComplaintAttachment, error)
}

type complaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

// searchColumn says how a search field maps onto SQL: the join needed (if any)
// and the column compared.
type searchColumn struct {
	join   string
	column string
}

var searchColumns = map[models.SearchField]searchColumn{
	models.SearchFieldCRN: {
		column: "complaints.crn",
	},
	models.SearchFieldComplaintTypeName: {
		join:   "LEFT JOIN complaint_types ON complaint_types.id = complaints.complaint_type_id",
		column: "complaint_types.name",
	},
	models.SearchFieldDepartmentName: {
		join:   "LEFT JOIN departments ON departments.id = complaints.department_id",
		column: "departments.name",
	},
	models.SearchFieldStatusName: {
		join:   "LEFT JOIN complaint_statuses ON complaint_statuses.id = complaints.status_id",
		column: "complaint_statuses.name",
	},
}

func (r *complaintRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("ComplaintType").
		Preload("Status").
		Preload("Department").
		Preload("Assignee").
		Preload("Location")
}

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(complaint).Error
}

func (r *complaintRepository) Save(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(complaint).Error
}

func (r *complaintRepository) FindByID(ctx context.Context, id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.withRelations(r.db.WithContext(ctx)).First(&complaint, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) FindAll(ctx context.Context) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := r.withRelations(r.db.WithContext(ctx)).Find(&complaints).Error
	return complaints, err
}

// Search ANDs every condition. A condition matches when the column is not null
// and its lowercased value contains the lowercased term.
func (r *complaintRepository) Search(ctx context.Context, conditions []models.SearchCondition) ([]models.Complaint, error) {
	query := r.db.WithContext(ctx).Model(&models.Complaint{})

	joined := make(map[string]bool)
	for _, cond := range conditions {
		col, ok := searchColumns[cond.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported search field %q", cond.Field)
		}
		if col.join != "" && !joined[col.join] {
			query = query.Joins(col.join)
			joined[col.join] = true
		}
		pattern := "%" + strings.ToLower(cond.Term) + "%"
		query = query.Where(fmt.Sprintf("%s IS NOT NULL AND LOWER(%s) LIKE ?", col.column, col.column), pattern)
	}

	var complaints []models.Complaint
	err := r.withRelations(query).Select("complaints.*").Find(&complaints).Error
	return complaints, err
}

// FindOpenWithSLA returns complaints whose type carries SLA hours and whose
// status is missing or not final.
func (r *complaintRepository) FindOpenWithSLA(ctx context.Context) ([]models.Complaint, error) {
	var complaints []models.Complaint
	query := r.db.WithContext(ctx).
		Model(&models.Complaint{}).
		Joins("JOIN complaint_types ON complaint_types.id = complaints.complaint_type_id").
		Joins("LEFT JOIN complaint_statuses ON complaint_statuses.id = complaints.status_id").
		Where("complaint_types.sla_hours IS NOT NULL").
		Where("complaint_statuses.id IS NULL OR complaint_statuses.is_final = ?", false).
		Select("complaints.*")
	err := r.withRelations(query).Find(&complaints).Error
	return complaints, err
}

// Attachments

func (r *complaintRepository) CreateAttachment(ctx context.Context, attachment *models.ComplaintAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *complaintRepository) FindAttachmentByID(ctx context.Context, id uuid.UUID) (*models.ComplaintAttachment, error) {
	var attachment models.ComplaintAttachment
	err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *complaintRepository) ListAttachments(ctx context.Context, complaintID uint) ([]models.ComplaintAttachment, error) {
	var attachments []models.ComplaintAttachment
	err := r.db.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("created_at DESC").
		Find(&attachments).Error
	return attachments, err
}
