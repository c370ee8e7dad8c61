package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/complaintdesk/backend/internal/models"
	"github.com/complaintdesk/backend/internal/repository"
	"gorm.io/gorm"
)

// Reference data lookups used while populating a complaint. Each resolves a
// caller-supplied key to the canonical stored entity.

type ComplaintTypeService interface {
	GetByCode(ctx context.Context, code string) (*models.ComplaintType, error)
	List(ctx context.Context) ([]models.ComplaintType, error)
}

type ComplaintStatusService interface {
	GetByName(ctx context.Context, name string) (*models.ComplaintStatus, error)
	List(ctx context.Context) ([]models.ComplaintStatus, error)
}

type DepartmentService interface {
	GetByCode(ctx context.Context, code string) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
}

// EmployeeService reports a missing employee through the bool rather than an
// error so callers can decide whether absence is fatal.
type EmployeeService interface {
	GetByID(ctx context.Context, id uint) (*models.Employee, bool, error)
	List(ctx context.Context) ([]models.Employee, error)
}

type BoundaryService interface {
	GetByCoordinates(ctx context.Context, longitude, latitude float64) (*models.Boundary, error)
	List(ctx context.Context) ([]models.Boundary, error)
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrReferenceNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

// Complaint types

type complaintTypeService struct {
	repo repository.ComplaintTypeRepository
}

func NewComplaintTypeService(repo repository.ComplaintTypeRepository) ComplaintTypeService {
	return &complaintTypeService{repo: repo}
}

func (s *complaintTypeService) GetByCode(ctx context.Context, code string) (*models.ComplaintType, error) {
	t, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "complaint type %q", code)
	}
	return t, nil
}

func (s *complaintTypeService) List(ctx context.Context) ([]models.ComplaintType, error) {
	return s.repo.List(ctx)
}

// Complaint statuses

type complaintStatusService struct {
	repo repository.ComplaintStatusRepository
}

func NewComplaintStatusService(repo repository.ComplaintStatusRepository) ComplaintStatusService {
	return &complaintStatusService{repo: repo}
}

func (s *complaintStatusService) GetByName(ctx context.Context, name string) (*models.ComplaintStatus, error) {
	status, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, notFound(err, "complaint status %q", name)
	}
	return status, nil
}

func (s *complaintStatusService) List(ctx context.Context) ([]models.ComplaintStatus, error) {
	return s.repo.List(ctx)
}

// Departments

type departmentService struct {
	repo repository.DepartmentRepository
}

func NewDepartmentService(repo repository.DepartmentRepository) DepartmentService {
	return &departmentService{repo: repo}
}

func (s *departmentService) GetByCode(ctx context.Context, code string) (*models.Department, error) {
	d, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "department %q", code)
	}
	return d, nil
}

func (s *departmentService) List(ctx context.Context) ([]models.Department, error) {
	return s.repo.List(ctx)
}

// Employees

type employeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) GetByID(ctx context.Context, id uint) (*models.Employee, bool, error) {
	e, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

func (s *employeeService) List(ctx context.Context) ([]models.Employee, error) {
	return s.repo.List(ctx)
}

// Boundaries

type boundaryService struct {
	repo repository.BoundaryRepository
}

func NewBoundaryService(repo repository.BoundaryRepository) BoundaryService {
	return &boundaryService{repo: repo}
}

func (s *boundaryService) GetByCoordinates(ctx context.Context, longitude, latitude float64) (*models.Boundary, error) {
	b, err := s.repo.FindContaining(ctx, longitude, latitude)
	if err != nil {
		return nil, notFound(err, "no boundary contains (%g, %g)", longitude, latitude)
	}
	return b, nil
}

func (s *boundaryService) List(ctx context.Context) ([]models.Boundary, error) {
	return s.repo.List(ctx)
}
