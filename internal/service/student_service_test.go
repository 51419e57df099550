package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type mockStudentRepo struct {
	students   map[string]models.Student
	lastFilter models.StudentFilter
	createErr  error
}

func (m *mockStudentRepo) ListActive(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	m.lastFilter = filter
	var out []models.StudentDetail
	for _, s := range m.students {
		if s.IsActive {
			out = append(out, models.StudentDetail{Student: s})
		}
	}
	return out, nil
}

func (m *mockStudentRepo) ListAll(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	var out []models.StudentDetail
	for _, s := range m.students {
		out = append(out, models.StudentDetail{Student: s})
	}
	return out, nil
}

func (m *mockStudentRepo) FindDetailByPIN(ctx context.Context, pin string, includeInactive bool) (*models.StudentDetail, error) {
	s, ok := m.students[pin]
	if !ok || (!s.IsActive && !includeInactive) {
		return nil, fmt.Errorf("find student detail: %w", sql.ErrNoRows)
	}
	return &models.StudentDetail{Student: s}, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.students[student.PIN] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.PIN]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.PIN] = *student
	return nil
}

func (m *mockStudentRepo) ExistsByPIN(ctx context.Context, pin string) (bool, error) {
	_, ok := m.students[pin]
	return ok, nil
}

type stubClasses struct{ ids map[int64]bool }

func (s stubClasses) ListActive(ctx context.Context) ([]models.Class, error) {
	var out []models.Class
	for id := range s.ids {
		out = append(out, models.Class{ID: id, IsActive: true})
	}
	return out, nil
}

func (s stubClasses) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	if !s.ids[id] {
		return nil, sql.ErrNoRows
	}
	return &models.Class{ID: id, Name: "1A", Year: 1, Section: "A", IsActive: true}, nil
}

func newStudentService() (*StudentService, *mockStudentRepo) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"20050101-1234": {PIN: "20050101-1234", FirstName: "Ada", LastName: "Lovelace", Gender: "Female", IsActive: true},
	}}
	identity := NewIdentityValidator(repo, stubPinLookup{}, stubCodeLookup{})
	lifecycle := NewLifecycleService(&memoryPinStore{active: map[string]bool{}}, &memoryPinStore{}, &memoryCourseStore{}, nil, nil, nil)
	return NewStudentService(repo, stubClasses{ids: map[int64]bool{1: true}}, identity, lifecycle, nil, nil, nil), repo
}

func TestStudentServiceCreate(t *testing.T) {
	svc, repo := newStudentService()
	classID := int64(1)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		PIN: "20060202-4321", FirstName: " Grace ", LastName: "Hopper", Gender: "Female", ClassID: &classID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", student.FirstName)
	assert.True(t, student.IsActive)
	assert.False(t, student.EnrollmentDate.IsZero())
	assert.Contains(t, repo.students, "20060202-4321")
}

func TestStudentServiceAcceptsOtherGender(t *testing.T) {
	svc, repo := newStudentService()

	student, err := svc.Create(context.Background(), CreateStudentRequest{PIN: "20070303-1111", FirstName: "Kim", LastName: "Ek", Gender: "Other"})
	require.NoError(t, err)
	assert.Equal(t, "Other", student.Gender)

	_, err = svc.Update(context.Background(), "20050101-1234", UpdateStudentRequest{FirstName: "Ada", LastName: "Lovelace", Gender: "Other"})
	require.NoError(t, err)
	assert.Equal(t, "Other", repo.students["20050101-1234"].Gender)

	_, err = svc.Update(context.Background(), "20050101-1234", UpdateStudentRequest{FirstName: "Ada", LastName: "Lovelace", Gender: "other"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStudentServiceCreateRejectsDuplicatePin(t *testing.T) {
	svc, _ := newStudentService()

	_, err := svc.Create(context.Background(), CreateStudentRequest{PIN: "20050101-1234", FirstName: "A", LastName: "B", Gender: "Male"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestStudentServiceCreateRejectsMalformedPin(t *testing.T) {
	svc, _ := newStudentService()

	_, err := svc.Create(context.Background(), CreateStudentRequest{PIN: "20051301-1234", FirstName: "A", LastName: "B", Gender: "Male"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidFormat)
}

func TestStudentServiceCreateUnknownClass(t *testing.T) {
	svc, _ := newStudentService()
	classID := int64(9)

	_, err := svc.Create(context.Background(), CreateStudentRequest{PIN: "20060202-4321", FirstName: "A", LastName: "B", Gender: "Male", ClassID: &classID})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestStudentServiceUpdateKeepsPin(t *testing.T) {
	svc, repo := newStudentService()

	student, err := svc.Update(context.Background(), "20050101-1234", UpdateStudentRequest{FirstName: "Ada", LastName: "Byron", Gender: "Female"})
	require.NoError(t, err)
	assert.Equal(t, "20050101-1234", student.PIN)
	assert.Equal(t, "Byron", repo.students["20050101-1234"].LastName)
}

func TestStudentServiceGetHidesInactive(t *testing.T) {
	svc, repo := newStudentService()
	s := repo.students["20050101-1234"]
	s.IsActive = false
	repo.students[s.PIN] = s

	_, err := svc.Get(context.Background(), s.PIN)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	detail, err := svc.GetAny(context.Background(), s.PIN)
	require.NoError(t, err)
	assert.False(t, detail.IsActive)

	active, err := svc.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestStudentServiceDeactivateUnknownPin(t *testing.T) {
	svc, _ := newStudentService()

	assert.ErrorIs(t, svc.Deactivate(context.Background(), "19990101-0000"), appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.Deactivate(context.Background(), "bogus"), appErrors.ErrInvalidFormat)
}
