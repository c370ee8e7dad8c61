package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintType classifies a complaint (e.g. POTHOLE, STREETLIGHT).
type ComplaintType struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Code         string         `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Description  string         `gorm:"size:500" json:"description"`
	DepartmentID *uuid.UUID     `gorm:"type:uuid;index" json:"department_id"`
	SLAHours     *int           `json:"sla_hours"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *ComplaintType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type ComplaintTypeResponse struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	SLAHours *int      `json:"sla_hours,omitempty"`
	IsActive bool      `json:"is_active"`
}

func ToComplaintTypeResponse(t *ComplaintType) ComplaintTypeResponse {
	return ComplaintTypeResponse{
		ID:       t.ID,
		Code:     t.Code,
		Name:     t.Name,
		SLAHours: t.SLAHours,
		IsActive: t.IsActive,
	}
}
