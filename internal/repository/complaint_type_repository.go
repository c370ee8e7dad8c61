package repository

import (
	"context"

	"github.com/complaintdesk/backend/internal/models"
	"gorm.io/gorm"
)

type ComplaintTypeRepository interface {
	Create(ctx context.Context, complaintType *models.ComplaintType) error
	FindByCode(ctx context.Context, code string) (*models.ComplaintType, error)
	List(ctx context.Context) ([]models.ComplaintType, error)
}

type complaintTypeRepository struct {
	db *gorm.DB
}

func NewComplaintTypeRepository(db *gorm.DB) ComplaintTypeRepository {
	return &complaintTypeRepository{db: db}
}

func (r *complaintTypeRepository) Create(ctx context.Context, complaintType *models.ComplaintType) error {
	return r.db.WithContext(ctx).Create(complaintType).Error
}

func (r *complaintTypeRepository) FindByCode(ctx context.Context, code string) (*models.ComplaintType, error) {
	var complaintType models.ComplaintType
	err := r.db.WithContext(ctx).First(&complaintType, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &complaintType, nil
}

func (r *complaintTypeRepository) List(ctx context.Context) ([]models.ComplaintType, error) {
	var types []models.ComplaintType
	err := r.db.WithContext(ctx).Order("name").Find(&types).Error
	return types, err
}
