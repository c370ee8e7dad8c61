package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Boundary is a geographic zone (ward, zone, city) described by a bounding box.
// A complaint's location is the smallest active boundary containing its coordinates.
type Boundary struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name         string         `gorm:"not null;size:100" json:"name"`
	Code         string         `gorm:"size:50;uniqueIndex" json:"code"`
	Type         string         `gorm:"size:50" json:"type"` // city, zone, ward
	ParentID     *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id"`
	Parent       *Boundary      `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	MinLatitude  float64        `gorm:"type:decimal(10,8);not null" json:"min_latitude"`
	MaxLatitude  float64        `gorm:"type:decimal(10,8);not null" json:"max_latitude"`
	MinLongitude float64        `gorm:"type:decimal(11,8);not null" json:"min_longitude"`
	MaxLongitude float64        `gorm:"type:decimal(11,8);not null" json:"max_longitude"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Boundary) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Contains reports whether the point lies inside the bounding box, edges included.
func (b *Boundary) Contains(longitude, latitude float64) bool {
	return latitude >= b.MinLatitude && latitude <= b.MaxLatitude &&
		longitude >= b.MinLongitude && longitude <= b.MaxLongitude
}

// BoundaryResponse for API responses
type BoundaryResponse struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Code     string     `json:"code"`
	Type     string     `json:"type"`
	ParentID *uuid.UUID `json:"parent_id"`
}

func ToBoundaryResponse(b *Boundary) BoundaryResponse {
	return BoundaryResponse{
		ID:       b.ID,
		Name:     b.Name,
		Code:     b.Code,
		Type:     b.Type,
		ParentID: b.ParentID,
	}
}
