package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/complaintdesk/backend/internal/events"
	"github.com/complaintdesk/backend/internal/models"
	"github.com/complaintdesk/backend/internal/repository"
	"github.com/complaintdesk/backend/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ComplaintService interface {
	// Complaint CRUD
	CreateComplaint(ctx context.Context, req *models.ComplaintCreateRequest, actorID uint) (*models.Complaint, error)
	UpdateComplaint(ctx context.Context, id uint, req *models.ComplaintUpdateRequest, actorID uint) (*models.Complaint, error)
	GetAll(ctx context.Context) ([]models.Complaint, error)
	GetByID(ctx context.Context, id uint) (*models.Complaint, error)
	Search(ctx context.Context, template *models.ComplaintSearchRequest) ([]models.Complaint, error)

	// Attachments
	AddAttachment(ctx context.Context, complaintID uint, upload *AttachmentUpload, actorID uint) (*models.ComplaintAttachment, error)
	ListAttachments(ctx context.Context, complaintID uint) ([]models.ComplaintAttachment, error)
	GetAttachment(ctx context.Context, id uuid.UUID) (*models.ComplaintAttachment, io.ReadCloser, error)
}

// Lookups groups the reference data services a complaint is populated from.
type Lookups struct {
	Types       ComplaintTypeService
	Statuses    ComplaintStatusService
	Departments DepartmentService
	Employees   EmployeeService
	Boundaries  BoundaryService
}

// AttachmentUpload is a file received for a complaint.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type complaintService struct {
	repo      repository.ComplaintRepository
	lookups   Lookups
	crn       CRNGenerator
	publisher events.Publisher
	storage   storage.FileStorage
	log       *zap.Logger
	now       func() time.Time
}

// NewComplaintService wires the complaint service. publisher and fileStorage may
// be nil: events are then dropped and attachment calls fail with
// ErrStorageUnavailable.
func NewComplaintService(
	repo repository.ComplaintRepository,
	lookups Lookups,
	crn CRNGenerator,
	publisher events.Publisher,
	fileStorage storage.FileStorage,
	log *zap.Logger,
) ComplaintService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &complaintService{
		repo:      repo,
		lookups:   lookups,
		crn:       crn,
		publisher: publisher,
		storage:   fileStorage,
		log:       log,
		now:       time.Now,
	}
}

// CreateComplaint resolves every reference carried by the request into a stored
// entity, stamps the audit fields and writes the record. All lookups run before
// the insert, so a failed lookup leaves nothing behind.
func (s *complaintService) CreateComplaint(ctx context.Context, req *models.ComplaintCreateRequest, actorID uint) (*models.Complaint, error) {
	complaint := &models.Complaint{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Comments:  req.Comments,
	}

	crn, err := s.crn.Generate(ctx)
	if err != nil {
		return nil, err
	}
	complaint.CRN = crn

	if req.ComplaintType != nil && !isBlank(req.ComplaintType.Code) {
		complaintType, err := s.lookups.Types.GetByCode(ctx, req.ComplaintType.Code)
		if err != nil {
			return nil, err
		}
		complaint.SetComplaintType(complaintType)
	}

	if req.Status != nil && !isBlank(req.Status.Name) {
		status, err := s.lookups.Statuses.GetByName(ctx, req.Status.Name)
		if err != nil {
			return nil, err
		}
		complaint.SetStatus(status)
	}

	// A single coordinate is kept on the record but does not locate it.
	if req.Latitude != nil && req.Longitude != nil {
		if !validCoordinates(*req.Longitude, *req.Latitude) {
			return nil, fmt.Errorf("%w: (%g, %g)", ErrInvalidCoordinates, *req.Longitude, *req.Latitude)
		}
		boundary, err := s.lookups.Boundaries.GetByCoordinates(ctx, *req.Longitude, *req.Latitude)
		if err != nil {
			return nil, err
		}
		complaint.SetLocation(boundary)
	}

	if req.Assignee != nil && req.Assignee.ID != nil {
		employee, ok, err := s.lookups.Employees.GetByID(ctx, *req.Assignee.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: employee %d", ErrAssigneeNotFound, *req.Assignee.ID)
		}
		complaint.SetAssignee(employee)
	}

	if req.Department != nil && !isBlank(req.Department.Code) {
		department, err := s.lookups.Departments.GetByCode(ctx, req.Department.Code)
		if err != nil {
			return nil, err
		}
		complaint.SetDepartment(department)
	}

	StampAudit(complaint, actorID, s.now())

	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	s.log.Info("Complaint created",
		zap.Uint("id", complaint.ID),
		zap.String("crn", complaint.CRN),
		zap.Uint("actor_id", *complaint.CreatedBy),
	)
	s.publish(ctx, events.ComplaintCreated, complaint)

	return s.reload(ctx, complaint)
}

// UpdateComplaint applies the comments and, when a status name is given, the
// status. Every other field on the stored record is left as it was.
func (s *complaintService) UpdateComplaint(ctx context.Context, id uint, req *models.ComplaintUpdateRequest, actorID uint) (*models.Complaint, error) {
	complaint, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// An absent comment clears the stored one.
	complaint.Comments = req.Comments

	if req.Status != nil && !isBlank(req.Status.Name) {
		status, err := s.lookups.Statuses.GetByName(ctx, req.Status.Name)
		if err != nil {
			return nil, err
		}
		complaint.SetStatus(status)
	}

	StampAudit(complaint, actorID, s.now())

	if err := s.repo.Save(ctx, complaint); err != nil {
		return nil, fmt.Errorf("failed to update complaint: %w", err)
	}

	s.log.Info("Complaint updated",
		zap.Uint("id", complaint.ID),
		zap.String("crn", complaint.CRN),
		zap.Uint("actor_id", *complaint.LastModifiedBy),
	)
	s.publish(ctx, events.ComplaintUpdated, complaint)

	return complaint, nil
}

func (s *complaintService) GetAll(ctx context.Context) ([]models.Complaint, error) {
	return s.repo.FindAll(ctx)
}

func (s *complaintService) GetByID(ctx context.Context, id uint) (*models.Complaint, error) {
	complaint, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrComplaintNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

func (s *complaintService) Search(ctx context.Context, template *models.ComplaintSearchRequest) ([]models.Complaint, error) {
	return s.repo.Search(ctx, BuildSearchConditions(template))
}

// Attachments

func (s *complaintService) AddAttachment(ctx context.Context, complaintID uint, upload *AttachmentUpload, actorID uint) (*models.ComplaintAttachment, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}

	complaint, err := s.GetByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if actorID == 0 {
		actorID = models.SystemActorID
	}

	objectName, err := s.storage.UploadFile(ctx, upload.Content, upload.Size, upload.FileName, upload.ContentType, "complaints/"+complaint.CRN)
	if err != nil {
		return nil, err
	}

	attachment := &models.ComplaintAttachment{
		ComplaintID: complaint.ID,
		FileName:    upload.FileName,
		FileSize:    upload.Size,
		MimeType:    upload.ContentType,
		FilePath:    objectName,
		UploadedBy:  actorID,
	}
	if err := s.repo.CreateAttachment(ctx, attachment); err != nil {
		if delErr := s.storage.DeleteFile(ctx, objectName); delErr != nil {
			s.log.Warn("Failed to remove orphaned attachment object",
				zap.String("object", objectName),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	return attachment, nil
}

func (s *complaintService) ListAttachments(ctx context.Context, complaintID uint) ([]models.ComplaintAttachment, error) {
	if _, err := s.GetByID(ctx, complaintID); err != nil {
		return nil, err
	}
	return s.repo.ListAttachments(ctx, complaintID)
}

func (s *complaintService) GetAttachment(ctx context.Context, id uuid.UUID) (*models.ComplaintAttachment, io.ReadCloser, error) {
	if s.storage == nil {
		return nil, nil, ErrStorageUnavailable
	}

	attachment, err := s.repo.FindAttachmentByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrAttachmentNotFound, id)
	}
	if err != nil {
		return nil, nil, err
	}

	content, err := s.storage.GetFile(ctx, attachment.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return attachment, content, nil
}

// reload returns the stored copy of a just-written complaint with its
// references loaded.
func (s *complaintService) reload(ctx context.Context, complaint *models.Complaint) (*models.Complaint, error) {
	stored, err := s.repo.FindByID(ctx, complaint.ID)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// publish emits a complaint event. The write has already been committed, so a
// failure is only logged.
func (s *complaintService) publish(ctx context.Context, eventType events.EventType, complaint *models.Complaint) {
	event := events.ComplaintEvent{
		Type:        eventType,
		ComplaintID: complaint.ID,
		CRN:         complaint.CRN,
		OccurredAt:  s.now(),
	}
	if complaint.Status != nil {
		event.Status = complaint.Status.Name
	}
	if complaint.LastModifiedBy != nil {
		event.ActorID = *complaint.LastModifiedBy
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish complaint event",
			zap.String("type", string(eventType)),
			zap.String("crn", complaint.CRN),
			zap.Error(err),
		)
	}
}

func validCoordinates(longitude, latitude float64) bool {
	if math.IsNaN(longitude) || math.IsNaN(latitude) {
		return false
	}
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}
