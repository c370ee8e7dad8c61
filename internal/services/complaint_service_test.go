package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/complaintdesk/backend/internal/database"
	"github.com/complaintdesk/backend/internal/events"
	"github.com/complaintdesk/backend/internal/models"
	"github.com/complaintdesk/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type sequenceCRN struct {
	n int
}

func (g *sequenceCRN) Generate(context.Context) (string, error) {
	g.n++
	return fmt.Sprintf("CRN-TEST-%04d", g.n), nil
}

type recordingPublisher struct {
	events []events.ComplaintEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.ComplaintEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type memoryStorage struct {
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) UploadFile(_ context.Context, r io.Reader, _ int64, fileName, _, folder string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	name := folder + "/" + fileName
	m.objects[name] = data
	return name, nil
}

func (m *memoryStorage) GetFile(_ context.Context, objectName string) (io.ReadCloser, error) {
	data, ok := m.objects[objectName]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStorage) DeleteFile(_ context.Context, objectName string) error {
	delete(m.objects, objectName)
	return nil
}

type serviceFixture struct {
	db        *gorm.DB
	svc       *complaintService
	clock     *fakeClock
	publisher *recordingPublisher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := database.NewTestDB(t)
	require.NoError(t, database.Seed(db, zap.NewNop()))

	lookups := Lookups{
		Types:       NewComplaintTypeService(repository.NewComplaintTypeRepository(db)),
		Statuses:    NewComplaintStatusService(repository.NewComplaintStatusRepository(db)),
		Departments: NewDepartmentService(repository.NewDepartmentRepository(db)),
		Employees:   NewEmployeeService(repository.NewEmployeeRepository(db)),
		Boundaries:  NewBoundaryService(repository.NewBoundaryRepository(db)),
	}

	publisher := &recordingPublisher{}
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	svc := NewComplaintService(
		repository.NewComplaintRepository(db),
		lookups,
		&sequenceCRN{},
		publisher,
		nil,
		zap.NewNop(),
	).(*complaintService)
	svc.now = clock.Now

	return &serviceFixture{db: db, svc: svc, clock: clock, publisher: publisher}
}

func (f *serviceFixture) countComplaints(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Complaint{}).Count(&n).Error)
	return n
}

func floatPtr(v float64) *float64 { return &v }

func uintPtr(v uint) *uint { return &v }

func TestCreateComplaintPopulatesReferences(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req := &models.ComplaintCreateRequest{
		CRN:           "CALLER-SUPPLIED",
		ComplaintType: &models.ComplaintTypeKey{Code: "POTHOLE"},
		Status:        &models.ComplaintStatusKey{Name: "REGISTERED"},
		Department:    &models.DepartmentKey{Code: "ROADS"},
		Latitude:      floatPtr(12.90),
		Longitude:     floatPtr(77.60),
		Comments:      strPtr("Deep pothole near the bus stop"),
	}

	complaint, err := f.svc.CreateComplaint(ctx, req, 7)
	require.NoError(t, err)

	assert.NotZero(t, complaint.ID)
	assert.Equal(t, "CRN-TEST-0001", complaint.CRN)

	require.NotNil(t, complaint.ComplaintType)
	assert.Equal(t, "Pothole", complaint.ComplaintType.Name)
	require.NotNil(t, complaint.Status)
	assert.Equal(t, "REGISTERED", complaint.Status.Name)
	require.NotNil(t, complaint.Department)
	assert.Equal(t, "Roads Maintenance", complaint.Department.Name)
	require.NotNil(t, complaint.Location)
	assert.Equal(t, "ZONE-SOUTH", complaint.Location.Code)
	assert.Nil(t, complaint.Assignee)
	assert.Equal(t, "Deep pothole near the bus stop", *complaint.Comments)

	assert.Equal(t, uint(7), *complaint.CreatedBy)
	assert.Equal(t, uint(7), *complaint.LastModifiedBy)
	assert.True(t, complaint.CreatedDate.Equal(f.clock.now))
	assert.True(t, complaint.LastModifiedDate.Equal(f.clock.now))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.ComplaintCreated, f.publisher.events[0].Type)
	assert.Equal(t, complaint.ID, f.publisher.events[0].ComplaintID)
	assert.Equal(t, "REGISTERED", f.publisher.events[0].Status)
}

func TestCreateComplaintGeneratesDistinctCRNs(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateComplaint(ctx, &models.ComplaintCreateRequest{CRN: "SAME"}, 1)
	require.NoError(t, err)
	second, err := f.svc.CreateComplaint(ctx, &models.ComplaintCreateRequest{CRN: "SAME"}, 1)
	require.NoError(t, err)

	assert.NotEqual(t, first.CRN, second.CRN)
	assert.NotEqual(t, "SAME", first.CRN)
}

func TestCreateComplaintMinimalRequest(t *testing.T) {
	f := newServiceFixture(t)

	complaint, err := f.svc.CreateComplaint(context.Background(), &models.ComplaintCreateRequest{}, 0)
	require.NoError(t, err)

	assert.Nil(t, complaint.ComplaintType)
	assert.Nil(t, complaint.Status)
	assert.Nil(t, complaint.Department)
	assert.Nil(t, complaint.Location)
	assert.Nil(t, complaint.Comments)
	assert.Equal(t, models.SystemActorID, *complaint.CreatedBy)
	assert.Equal(t, models.SystemActorID, *complaint.LastModifiedBy)
}

func TestCreateComplaintBlankKeysAreIgnored(t *testing.T) {
	f := newServiceFixture(t)

	req := &models.ComplaintCreateRequest{
		ComplaintType: &models.ComplaintTypeKey{Code: " "},
		Status:        &models.ComplaintStatusKey{},
		Department:    &models.DepartmentKey{Code: ""},
		Assignee:      &models.AssigneeKey{},
	}

	complaint, err := f.svc.CreateComplaint(context.Background(), req, 1)
	require.NoError(t, err)

	assert.Nil(t, complaint.ComplaintType)
	assert.Nil(t, complaint.Status)
	assert.Nil(t, complaint.Department)
	assert.Nil(t, complaint.Assignee)
}

func TestCreateComplaintSingleCoordinateIsNotLocated(t *testing.T) {
	f := newServiceFixture(t)

	complaint, err := f.svc.CreateComplaint(context.Background(), &models.ComplaintCreateRequest{
		Latitude: floatPtr(12.90),
	}, 1)
	require.NoError(t, err)

	assert.Nil(t, complaint.Location)
	require.NotNil(t, complaint.Latitude)
	assert.InDelta(t, 12.90, *complaint.Latitude, 1e-9)
	assert.Nil(t, complaint.Longitude)
}

func TestCreateComplaintPicksSmallestBoundary(t *testing.T) {
	f := newServiceFixture(t)

	// Inside the city but outside the south zone.
	complaint, err := f.svc.CreateComplaint(context.Background(), &models.ComplaintCreateRequest{
		Latitude:  floatPtr(13.10),
		Longitude: floatPtr(77.45),
	}, 1)
	require.NoError(t, err)

	require.NotNil(t, complaint.Location)
	assert.Equal(t, "CITY", complaint.Location.Code)
}

func TestCreateComplaintWithAssignee(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	employee := &models.Employee{Code: "E100", FirstName: "Asha", LastName: "Rao", IsActive: true}
	require.NoError(t, repository.NewEmployeeRepository(f.db).Create(ctx, employee))

	complaint, err := f.svc.CreateComplaint(ctx, &models.ComplaintCreateRequest{
		Assignee: &models.AssigneeKey{ID: uintPtr(employee.ID)},
	}, 1)
	require.NoError(t, err)

	require.NotNil(t, complaint.Assignee)
	assert.Equal(t, "Asha Rao", complaint.Assignee.FullName())
}

func TestCreateComplaintFailuresLeaveNothingBehind(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.ComplaintCreateRequest
		wantErr error
	}{
		{
			name:    "unknown complaint type",
			req:     &models.ComplaintCreateRequest{ComplaintType: &models.ComplaintTypeKey{Code: "NOPE"}},
			wantErr: ErrReferenceNotFound,
		},
		{
			name:    "unknown status",
			req:     &models.ComplaintCreateRequest{Status: &models.ComplaintStatusKey{Name: "NOPE"}},
			wantErr: ErrReferenceNotFound,
		},
		{
			name: "unknown department after valid references",
			req: &models.ComplaintCreateRequest{
				ComplaintType: &models.ComplaintTypeKey{Code: "POTHOLE"},
				Status:        &models.ComplaintStatusKey{Name: "OPEN"},
				Department:    &models.DepartmentKey{Code: "NOPE"},
			},
			wantErr: ErrReferenceNotFound,
		},
		{
			name:    "unknown assignee",
			req:     &models.ComplaintCreateRequest{Assignee: &models.AssigneeKey{ID: uintPtr(9999)}},
			wantErr: ErrAssigneeNotFound,
		},
		{
			name:    "coordinates outside every boundary",
			req:     &models.ComplaintCreateRequest{Latitude: floatPtr(0), Longitude: floatPtr(0)},
			wantErr: ErrReferenceNotFound,
		},
		{
			name:    "coordinates out of range",
			req:     &models.ComplaintCreateRequest{Latitude: floatPtr(95), Longitude: floatPtr(77.6)},
			wantErr: ErrInvalidCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)

			complaint, err := f.svc.CreateComplaint(context.Background(), tt.req, 1)

			assert.Nil(t, complaint)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.countComplaints(t))
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestUpdateComplaintAppliesOnlyCommentsAndStatus(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateComplaint(ctx, &models.ComplaintCreateRequest{
		ComplaintType: &models.ComplaintTypeKey{Code: "POTHOLE"},
		Status:        &models.ComplaintStatusKey{Name: "REGISTERED"},
		Department:    &models.DepartmentKey{Code: "ROADS"},
		Latitude:      floatPtr(12.90),
		Longitude:     floatPtr(77.60),
		Comments:      strPtr("first report"),
	}, 7)
	require.NoError(t, err)
	createdAt := *created.CreatedDate

	f.clock.Advance(time.Hour)

	updated, err := f.svc.UpdateComplaint(ctx, created.ID, &models.ComplaintUpdateRequest{
		Comments:      strPtr("crew dispatched"),
		Status:        &models.ComplaintStatusKey{Name: "IN_PROGRESS"},
		ComplaintType: &models.ComplaintTypeKey{Code: "GARBAGE"},
		Department:    &models.DepartmentKey{Code: "WATER"},
		Latitude:      floatPtr(13.10),
		Longitude:     floatPtr(77.45),
	}, 9)
	require.NoError(t, err)

	stored, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	for _, c := range []*models.Complaint{updated, stored} {
		assert.Equal(t, created.CRN, c.CRN)
		assert.Equal(t, "crew dispatched", *c.Comments)
		assert.Equal(t, "IN_PROGRESS", c.Status.Name)
		assert.Equal(t, "Pothole", c.ComplaintType.Name)
		assert.Equal(t, "Roads Maintenance", c.Department.Name)
		assert.Equal(t, "ZONE-SOUTH", c.Location.Code)
		assert.InDelta(t, 12.90, *c.Latitude, 1e-9)
		assert.InDelta(t, 77.60, *c.Longitude, 1e-9)

		assert.Equal(t, uint(7), *c.CreatedBy)
		assert.True(t, c.CreatedDate.Equal(createdAt))
		assert.Equal(t, uint(9), *c.LastModifiedBy)
		assert.True(t, c.LastModifiedDate.After(*c.CreatedDate))
	}

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.ComplaintUpdated, f.publisher.events[1].Type)
	assert.Equal(t, uint(9), f.publisher.events[1].ActorID)
}

func TestUpdateComplaintAbsentCommentClearsAndBlankStatusKeeps(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateComplaint(ctx, &models.ComplaintCreateRequest{
		Status:   &models.ComplaintStatusKey{Name: "OPEN"},
		Comments: strPtr("keep me?"),
	}, 1)
	require.NoError(t, err)

	updated, err := f.svc.UpdateComplaint(ctx, created.ID, &models.ComplaintUpdateRequest{
		Status: &models.ComplaintStatusKey{Name: "  "},
	}, 1)
	require.NoError(t, err)

	assert.Nil(t, updated.Comments)
	require.NotNil(t, updated.Status)
	assert.Equal(t, "OPEN", updated.Status.Name)

	stored, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Comments)
	assert.Equal(t, "OPEN", stored.Status.Name)
}

func TestUpdateComplaintNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.UpdateComplaint(context.Background(), 4242, &models.ComplaintUpdateRequest{}, 1)

	assert.ErrorIs(t, err, ErrComplaintNotFound)
	assert.Zero(t, f.countComplaints(t))
}

func TestUpdateComplaintUnknownStatusLeavesRecordUnchanged(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateComplaint(ctx, &models.ComplaintCreateRequest{
		Status:   &models.ComplaintStatusKey{Name: "OPEN"},
		Comments: strPtr("original"),
	}, 1)
	require.NoError(t, err)

	_, err = f.svc.UpdateComplaint(ctx, created.ID, &models.ComplaintUpdateRequest{
		Comments: strPtr("changed"),
		Status:   &models.ComplaintStatusKey{Name: "NOPE"},
	}, 2)
	assert.ErrorIs(t, err, ErrReferenceNotFound)

	stored, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", *stored.Comments)
	assert.Equal(t, "OPEN", stored.Status.Name)
	assert.Equal(t, uint(1), *stored.LastModifiedBy)
}

func TestGetByIDNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.GetByID(context.Background(), 1)

	assert.ErrorIs(t, err, ErrComplaintNotFound)
}

func TestGetAll(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	all, err := f.svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for i := 0; i < 3; i++ {
		_, err := f.svc.CreateComplaint(ctx, &models.ComplaintCreateRequest{}, 1)
		require.NoError(t, err)
	}

	all, err = f.svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSearch(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	seed := []*models.ComplaintCreateRequest{
		{
			ComplaintType: &models.ComplaintTypeKey{Code: "POTHOLE"},
			Status:        &models.ComplaintStatusKey{Name: "REGISTERED"},
			Department:    &models.DepartmentKey{Code: "ROADS"},
		},
		{
			ComplaintType: &models.ComplaintTypeKey{Code: "WATER_LEAK"},
			Status:        &models.ComplaintStatusKey{Name: "OPEN"},
			Department:    &models.DepartmentKey{Code: "WATER"},
		},
		{
			ComplaintType: &models.ComplaintTypeKey{Code: "GARBAGE"},
			Department:    &models.DepartmentKey{Code: "SANITATION"},
		},
	}
	for _, req := range seed {
		_, err := f.svc.CreateComplaint(ctx, req, 1)
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		template *models.ComplaintSearchRequest
		want     []string
	}{
		{
			name:     "empty template returns everything",
			template: &models.ComplaintSearchRequest{},
			want:     []string{"CRN-TEST-0001", "CRN-TEST-0002", "CRN-TEST-0003"},
		},
		{
			name:     "department name is case-insensitive",
			template: &models.ComplaintSearchRequest{Department: &models.NameFilter{Name: "roads"}},
			want:     []string{"CRN-TEST-0001"},
		},
		{
			name:     "complaint type substring",
			template: &models.ComplaintSearchRequest{ComplaintType: &models.NameFilter{Name: "LEAK"}},
			want:     []string{"CRN-TEST-0002"},
		},
		{
			name:     "crn substring",
			template: &models.ComplaintSearchRequest{CRN: strPtr("test-0003")},
			want:     []string{"CRN-TEST-0003"},
		},
		{
			name:     "missing status never matches a status filter",
			template: &models.ComplaintSearchRequest{Status: &models.NameFilter{Name: "e"}},
			want:     []string{"CRN-TEST-0001", "CRN-TEST-0002"},
		},
		{
			name: "conditions are combined",
			template: &models.ComplaintSearchRequest{
				ComplaintType: &models.NameFilter{Name: "pot"},
				Department:    &models.NameFilter{Name: "water"},
			},
			want: nil,
		},
		{
			name: "blank fields are ignored",
			template: &models.ComplaintSearchRequest{
				CRN:        strPtr(""),
				Department: &models.NameFilter{Name: "SANIT"},
				Status:     &models.NameFilter{},
			},
			want: []string{"CRN-TEST-0003"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := f.svc.Search(ctx, tt.template)
			require.NoError(t, err)

			var got []string
			for _, c := range results {
				got = append(got, c.CRN)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestSearchResultsCarryReferences(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateComplaint(ctx, &models.ComplaintCreateRequest{
		ComplaintType: &models.ComplaintTypeKey{Code: "STREETLIGHT"},
		Department:    &models.DepartmentKey{Code: "ELECTRICAL"},
	}, 1)
	require.NoError(t, err)

	results, err := f.svc.Search(ctx, &models.ComplaintSearchRequest{
		Department: &models.NameFilter{Name: "light"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].ComplaintType)
	assert.Equal(t, "Streetlight Not Working", results[0].ComplaintType.Name)
	assert.Equal(t, "Street Lighting", results[0].Department.Name)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newServiceFixture(t)
	f.publisher.err = errors.New("broker down")

	complaint, err := f.svc.CreateComplaint(context.Background(), &models.ComplaintCreateRequest{}, 1)

	require.NoError(t, err)
	assert.NotZero(t, complaint.ID)
	assert.Equal(t, int64(1), f.countComplaints(t))
}

func TestAttachmentsWithoutStorage(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.AddAttachment(context.Background(), 1, &AttachmentUpload{}, 1)

	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestAttachments(t *testing.T) {
	f := newServiceFixture(t)
	store := newMemoryStorage()
	f.svc.storage = store
	ctx := context.Background()

	complaint, err := f.svc.CreateComplaint(ctx, &models.ComplaintCreateRequest{}, 1)
	require.NoError(t, err)

	attachment, err := f.svc.AddAttachment(ctx, complaint.ID, &AttachmentUpload{
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
		Size:        5,
		Content:     strings.NewReader("bytes"),
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), attachment.UploadedBy)
	assert.Equal(t, "complaints/"+complaint.CRN+"/photo.jpg", attachment.FilePath)

	list, err := f.svc.ListAttachments(ctx, complaint.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, attachment.ID, list[0].ID)

	got, content, err := f.svc.GetAttachment(ctx, attachment.ID)
	require.NoError(t, err)
	defer content.Close()
	data, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", got.FileName)
	assert.Equal(t, "bytes", string(data))

	_, err = f.svc.AddAttachment(ctx, 999, &AttachmentUpload{Content: strings.NewReader("")}, 1)
	assert.ErrorIs(t, err, ErrComplaintNotFound)
}
