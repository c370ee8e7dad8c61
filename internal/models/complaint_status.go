package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintStatus is identified by its name (REGISTERED, OPEN, CLOSED, ...).
type ComplaintStatus struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:50;uniqueIndex;not null" json:"name"`
	IsFinal   bool           `gorm:"default:false" json:"is_final"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *ComplaintStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ComplaintStatusResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	IsFinal bool      `json:"is_final"`
}

func ToComplaintStatusResponse(s *ComplaintStatus) ComplaintStatusResponse {
	return ComplaintStatusResponse{
		ID:      s.ID,
		Name:    s.Name,
		IsFinal: s.IsFinal,
	}
}
