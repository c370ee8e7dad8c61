package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is a workflow user that complaints can be assigned to.
type Employee struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Code         string         `gorm:"size:50;uniqueIndex;not null" json:"code"`
	FirstName    string         `gorm:"size:100" json:"first_name"`
	LastName     string         `gorm:"size:100" json:"last_name"`
	Email        string         `gorm:"size:100" json:"email"`
	Phone        string         `gorm:"size:20" json:"phone"`
	DepartmentID *uuid.UUID     `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department    `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type EmployeeResponse struct {
	ID           uint       `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	DepartmentID *uuid.UUID `json:"department_id"`
}

func ToEmployeeResponse(e *Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:           e.ID,
		Code:         e.Code,
		Name:         e.FullName(),
		Email:        e.Email,
		DepartmentID: e.DepartmentID,
	}
}
