package repository

import (
	"context"

	"github.com/complaintdesk/backend/internal/models"
	"gorm.io/gorm"
)

type BoundaryRepository interface {
	Create(ctx context.Context, boundary *models.Boundary) error
	FindContaining(ctx context.Context, longitude, latitude float64) (*models.Boundary, error)
	List(ctx context.Context) ([]models.Boundary, error)
}

type boundaryRepository struct {
	db *gorm.DB
}

func NewBoundaryRepository(db *gorm.DB) BoundaryRepository {
	return &boundaryRepository{db: db}
}

func (r *boundaryRepository) Create(ctx context.Context, boundary *models.Boundary) error {
	return r.db.WithContext(ctx).Create(boundary).Error
}

// FindContaining returns the smallest active boundary whose box contains the point.
func (r *boundaryRepository) FindContaining(ctx context.Context, longitude, latitude float64) (*models.Boundary, error) {
	var boundary models.Boundary
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("min_latitude <= ? AND max_latitude >= ?", latitude, latitude).
		Where("min_longitude <= ? AND max_longitude >= ?", longitude, longitude).
		Order("(max_latitude - min_latitude) * (max_longitude - min_longitude) ASC").
		First(&boundary).Error
	if err != nil {
		return nil, err
	}
	return &boundary, nil
}

func (r *boundaryRepository) List(ctx context.Context) ([]models.Boundary, error) {
	var boundaries []models.Boundary
	err := r.db.WithContext(ctx).Order("type, name").Find(&boundaries).Error
	return boundaries, err
}
