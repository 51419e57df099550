package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type stubReportRepo struct {
	grades []models.StudentCourseGrade
	calls  int
}

func (s *stubReportRepo) DepartmentSalaryStats(ctx context.Context) ([]models.DepartmentSalaryStats, error) {
	s.calls++
	return []models.DepartmentSalaryStats{{DepartmentID: 1, DepartmentName: "Science", EmployeeCount: 2, AvgSalary: 100, TotalSalary: 200}}, nil
}

func (s *stubReportRepo) TeacherCountByDepartment(ctx context.Context) ([]models.DepartmentTeacherCount, error) {
	return nil, nil
}

func (s *stubReportRepo) EmployeeOverview(ctx context.Context) ([]models.EmployeeOverview, error) {
	return nil, nil
}

func (s *stubReportRepo) StudentCourseGrades(ctx context.Context, pin string) ([]models.StudentCourseGrade, error) {
	return s.grades, nil
}

type stubReportStudents struct{}

func (stubReportStudents) FindDetailByPIN(ctx context.Context, pin string, includeInactive bool) (*models.StudentDetail, error) {
	if pin != "20050101-1234" {
		return nil, sql.ErrNoRows
	}
	return &models.StudentDetail{Student: models.Student{PIN: pin, FirstName: "Ada", LastName: "Lovelace"}}, nil
}

type memoryCache struct {
	entries map[string]interface{}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if d, ok := dest.(*[]models.DepartmentSalaryStats); ok {
		*d = v.([]models.DepartmentSalaryStats)
	}
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func TestReportServiceReadsThroughCache(t *testing.T) {
	repo := &stubReportRepo{}
	store := &memoryCache{entries: map[string]interface{}{}}
	cache := NewCacheService(store, NewMetricsService(), time.Minute, nil, true)
	svc := NewReportService(repo, stubReportStudents{}, cache, time.Minute, nil)
	ctx := context.Background()

	_, err := svc.DepartmentSalaryStats(ctx)
	require.NoError(t, err)
	stats, err := svc.DepartmentSalaryStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	assert.Len(t, stats, 1)

	cache.InvalidateReports(ctx)
	_, err = svc.DepartmentSalaryStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestReportServiceExportStudentGradesCSV(t *testing.T) {
	grade := "A"
	assigned := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	repo := &stubReportRepo{grades: []models.StudentCourseGrade{
		{StudentPIN: "20050101-1234", CourseName: "History", CourseCode: "HIST1", TeacherFirstName: "Alan", TeacherLastName: "Turing"},
		{StudentPIN: "20050101-1234", CourseName: "Mathematics", CourseCode: "MATH1", TeacherFirstName: "Alan", TeacherLastName: "Turing", Grade: &grade, GradeAssignedAt: &assigned},
	}}
	svc := NewReportService(repo, stubReportStudents{}, nil, time.Minute, nil)

	file, err := svc.ExportStudentGrades(context.Background(), "20050101-1234", "csv")
	require.NoError(t, err)
	assert.Equal(t, "grades-20050101-1234.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "Course,Code,Teacher,Grade,Assigned\nHistory,HIST1,Alan Turing,-,-\nMathematics,MATH1,Alan Turing,A,2026-01-15\n", string(file.Payload))
}

func TestReportServiceExportErrors(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, stubReportStudents{}, nil, time.Minute, nil)
	ctx := context.Background()

	_, err := svc.ExportStudentGrades(ctx, "20050101-1234", "docx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ExportStudentGrades(ctx, "20050101-9999", "pdf")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
