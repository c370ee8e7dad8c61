package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemActorID is recorded in the audit columns when no authenticated actor
// is available for a write.
const SystemActorID uint = 1

// Complaint is the central complaint record.
type Complaint struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	CRN string `gorm:"column:crn;size:50;uniqueIndex;not null" json:"crn"`

	ComplaintTypeID *uuid.UUID     `gorm:"type:uuid;index" json:"complaint_type_id"`
	ComplaintType   *ComplaintType `gorm:"foreignKey:ComplaintTypeID" json:"complaint_type,omitempty"`

	StatusID *uuid.UUID       `gorm:"type:uuid;index" json:"status_id"`
	Status   *ComplaintStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`

	DepartmentID *uuid.UUID  `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	AssigneeID *uint     `gorm:"index" json:"assignee_id"`
	Assignee   *Employee `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`

	Latitude  *float64 `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude *float64 `gorm:"type:decimal(11,8)" json:"longitude"`

	// Derived from Latitude/Longitude, never taken from input.
	LocationID *uuid.UUID `gorm:"type:uuid;index" json:"location_id"`
	Location   *Boundary  `gorm:"foreignKey:LocationID" json:"location,omitempty"`

	Comments *string `gorm:"type:text" json:"comments"`

	CreatedBy        *uint      `json:"created_by"`
	CreatedDate      *time.Time `json:"created_date"`
	LastModifiedBy   *uint      `json:"last_modified_by"`
	LastModifiedDate *time.Time `json:"last_modified_date"`

	Attachments []ComplaintAttachment `gorm:"foreignKey:ComplaintID" json:"attachments,omitempty"`
}

// The setters below keep the foreign key and the loaded association in step;
// repositories write with associations omitted, so only the key is persisted.

func (c *Complaint) SetComplaintType(t *ComplaintType) {
	c.ComplaintType = t
	c.ComplaintTypeID = nil
	if t != nil {
		id := t.ID
		c.ComplaintTypeID = &id
	}
}

func (c *Complaint) SetStatus(s *ComplaintStatus) {
	c.Status = s
	c.StatusID = nil
	if s != nil {
		id := s.ID
		c.StatusID = &id
	}
}

func (c *Complaint) SetDepartment(d *Department) {
	c.Department = d
	c.DepartmentID = nil
	if d != nil {
		id := d.ID
		c.DepartmentID = &id
	}
}

func (c *Complaint) SetAssignee(e *Employee) {
	c.Assignee = e
	c.AssigneeID = nil
	if e != nil {
		id := e.ID
		c.AssigneeID = &id
	}
}

func (c *Complaint) SetLocation(b *Boundary) {
	c.Location = b
	c.LocationID = nil
	if b != nil {
		id := b.ID
		c.LocationID = &id
	}
}

// SLADeadline is the time by which the complaint should be closed, derived
// from its type's SLA hours. ok is false when no deadline applies.
func (c *Complaint) SLADeadline() (deadline time.Time, ok bool) {
	if c.ComplaintType == nil || c.ComplaintType.SLAHours == nil || c.CreatedDate == nil {
		return time.Time{}, false
	}
	return c.CreatedDate.Add(time.Duration(*c.ComplaintType.SLAHours) * time.Hour), true
}

// ComplaintAttachment is a file (photo, document) stored in object storage.
type ComplaintAttachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ComplaintID uint      `gorm:"index;not null" json:"complaint_id"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	FileSize    int64     `json:"file_size"`
	MimeType    string    `gorm:"size:100" json:"mime_type"`
	FilePath    string    `gorm:"size:500;not null" json:"file_path"`
	UploadedBy  uint      `gorm:"not null" json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *ComplaintAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Lookup keys. Input carries only the key a reference is resolved by,
// never a partially filled entity.

type ComplaintTypeKey struct {
	Code string `json:"code" validate:"max=50"`
}

type ComplaintStatusKey struct {
	Name string `json:"name" validate:"max=50"`
}

type DepartmentKey struct {
	Code string `json:"code" validate:"max=50"`
}

type AssigneeKey struct {
	ID *uint `json:"id"`
}

// ComplaintCreateRequest for submitting a new complaint
type ComplaintCreateRequest struct {
	// Ignored: the reference number is always generated.
	CRN           string              `json:"crn"`
	ComplaintType *ComplaintTypeKey   `json:"complaint_type"`
	Status        *ComplaintStatusKey `json:"status"`
	Department    *DepartmentKey      `json:"department"`
	Assignee      *AssigneeKey        `json:"assignee"`
	Latitude      *float64            `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude     *float64            `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Comments      *string             `json:"comments" validate:"omitempty,max=4000"`
}

// ComplaintUpdateRequest for updating a complaint. Only Comments and Status
// are applied; the remaining fields are accepted and ignored.
type ComplaintUpdateRequest struct {
	Comments *string             `json:"comments" validate:"omitempty,max=4000"`
	Status   *ComplaintStatusKey `json:"status"`

	ComplaintType *ComplaintTypeKey `json:"complaint_type"`
	Department    *DepartmentKey    `json:"department"`
	Assignee      *AssigneeKey      `json:"assignee"`
	Latitude      *float64          `json:"latitude"`
	Longitude     *float64          `json:"longitude"`
}

// NameFilter carries a partial name to match against a related entity.
type NameFilter struct {
	Name string `json:"name"`
}

// ComplaintSearchRequest is the search template: every populated field adds
// one case-insensitive substring condition.
type ComplaintSearchRequest struct {
	CRN           *string     `json:"crn"`
	ComplaintType *NameFilter `json:"complaint_type"`
	Department    *NameFilter `json:"department"`
	Status        *NameFilter `json:"status"`
}

// SearchField enumerates the fields a complaint search can filter on.
type SearchField string

const (
	SearchFieldCRN               SearchField = "crn"
	SearchFieldComplaintTypeName SearchField = "complaint_type.name"
	SearchFieldDepartmentName    SearchField = "department.name"
	SearchFieldStatusName        SearchField = "status.name"
)

// SearchCondition is a single "field contains term" predicate.
type SearchCondition struct {
	Field SearchField
	Term  string
}

// ComplaintResponse for API responses
type ComplaintResponse struct {
	ID               uint                     `json:"id"`
	CRN              string                   `json:"crn"`
	ComplaintType    *ComplaintTypeResponse   `json:"complaint_type"`
	Status           *ComplaintStatusResponse `json:"status"`
	Department       *DepartmentResponse      `json:"department"`
	Assignee         *EmployeeResponse        `json:"assignee"`
	Latitude         *float64                 `json:"latitude"`
	Longitude        *float64                 `json:"longitude"`
	Location         *BoundaryResponse        `json:"location"`
	Comments         *string                  `json:"comments"`
	CreatedBy        *uint                    `json:"created_by"`
	CreatedDate      *time.Time               `json:"created_date"`
	LastModifiedBy   *uint                    `json:"last_modified_by"`
	LastModifiedDate *time.Time               `json:"last_modified_date"`
}

func ToComplaintResponse(c *Complaint) ComplaintResponse {
	resp := ComplaintResponse{
		ID:               c.ID,
		CRN:              c.CRN,
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		Comments:         c.Comments,
		CreatedBy:        c.CreatedBy,
		CreatedDate:      c.CreatedDate,
		LastModifiedBy:   c.LastModifiedBy,
		LastModifiedDate: c.LastModifiedDate,
	}

	if c.ComplaintType != nil {
		t := ToComplaintTypeResponse(c.ComplaintType)
		resp.ComplaintType = &t
	}
	if c.Status != nil {
		s := ToComplaintStatusResponse(c.Status)
		resp.Status = &s
	}
	if c.Department != nil {
		d := ToDepartmentResponse(c.Department)
		resp.Department = &d
	}
	if c.Assignee != nil {
		e := ToEmployeeResponse(c.Assignee)
		resp.Assignee = &e
	}
	if c.Location != nil {
		b := ToBoundaryResponse(c.Location)
		resp.Location = &b
	}

	return resp
}

func ToComplaintResponses(complaints []Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, len(complaints))
	for i := range complaints {
		out[i] = ToComplaintResponse(&complaints[i])
	}
	return out
}

type ComplaintAttachmentResponse struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	UploadedBy uint      `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToComplaintAttachmentResponse(a *ComplaintAttachment) ComplaintAttachmentResponse {
	return ComplaintAttachmentResponse{
		ID:         a.ID,
		FileName:   a.FileName,
		FileSize:   a.FileSize,
		MimeType:   a.MimeType,
		UploadedBy: a.UploadedBy,
		CreatedAt:  a.CreatedAt,
	}
}
