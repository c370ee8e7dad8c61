package repository

import (
	"context"

	"github.com/complaintdesk/backend/internal/models"
	"gorm.io/gorm"
)

type ComplaintStatusRepository interface {
	Create(ctx context.Context, status *models.ComplaintStatus) error
	FindByName(ctx context.Context, name string) (*models.ComplaintStatus, error)
	List(ctx context.Context) ([]models.ComplaintStatus, error)
}

type complaintStatusRepository struct {
	db *gorm.DB
}

func NewComplaintStatusRepository(db *gorm.DB) ComplaintStatusRepository {
	return &complaintStatusRepository{db: db}
}

func (r *complaintStatusRepository) Create(ctx context.Context, status *models.ComplaintStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *complaintStatusRepository) FindByName(ctx context.Context, name string) (*models.ComplaintStatus, error) {
	var status models.ComplaintStatus
	err := r.db.WithContext(ctx).First(&status, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *complaintStatusRepository) List(ctx context.Context) ([]models.ComplaintStatus, error) {
	var statuses []models.ComplaintStatus
	err := r.db.WithContext(ctx).Order("sort_order, name").Find(&statuses).Error
	return statuses, err
}
