package repository

import (
	"context"

	"github.com/complaintdesk/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Department, error)
	FindByCode(ctx context.Context, code string) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *departmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).First(&department, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) FindByCode(ctx context.Context, code string) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).First(&department, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	err := r.db.WithContext(ctx).Order("sort_order, name").Find(&departments).Error
	return departments, err
}
