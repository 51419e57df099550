package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
	"github.com/noah-isme/school-records-api/pkg/export"
)

type reportRepository interface {
	DepartmentSalaryStats(ctx context.Context) ([]models.DepartmentSalaryStats, error)
	TeacherCountByDepartment(ctx context.Context) ([]models.DepartmentTeacherCount, error)
	EmployeeOverview(ctx context.Context) ([]models.EmployeeOverview, error)
	StudentCourseGrades(ctx context.Context, pin string) ([]models.StudentCourseGrade, error)
}

type reportStudentLookup interface {
	FindDetailByPIN(ctx context.Context, pin string, includeInactive bool) (*models.StudentDetail, error)
}

// ExportFile is a rendered report ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ReportService serves read-only projections, optionally through the report cache.
type ReportService struct {
	repo     reportRepository
	students reportStudentLookup
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewReportService constructs the report service. cache may be nil.
func NewReportService(repo reportRepository, students reportStudentLookup, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, students: students, cache: cache, ttl: ttl, logger: logger}
}

// DepartmentSalaryStats returns average and total salary per department.
func (s *ReportService) DepartmentSalaryStats(ctx context.Context) ([]models.DepartmentSalaryStats, error) {
	return cachedReport(ctx, s, "reports:department-salaries", s.repo.DepartmentSalaryStats)
}

// TeacherCountByDepartment returns active teacher headcount per department.
func (s *ReportService) TeacherCountByDepartment(ctx context.Context) ([]models.DepartmentTeacherCount, error) {
	return cachedReport(ctx, s, "reports:teachers-by-department", s.repo.TeacherCountByDepartment)
}

// EmployeeOverview returns tenure information for active employees.
func (s *ReportService) EmployeeOverview(ctx context.Context) ([]models.EmployeeOverview, error) {
	return cachedReport(ctx, s, "reports:employee-overview", s.repo.EmployeeOverview)
}

// StudentCourseGrades returns the course/grade rollup of one student.
func (s *ReportService) StudentCourseGrades(ctx context.Context, pin string) ([]models.StudentCourseGrade, error) {
	return cachedReport(ctx, s, "reports:student-grades:"+pin, func(ctx context.Context) ([]models.StudentCourseGrade, error) {
		return s.repo.StudentCourseGrades(ctx, pin)
	})
}

// ExportStudentGrades renders a student's grades as csv, pdf or xlsx.
func (s *ReportService) ExportStudentGrades(ctx context.Context, pin, format string) (*ExportFile, error) {
	parsed, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv, pdf or xlsx")
	}
	if !ValidatePinFormat(pin) {
		return nil, appErrors.Clone(appErrors.ErrInvalidFormat, "pin must be YYYYMMDD-XXXX")
	}
	student, err := s.students.FindDetailByPIN(ctx, pin, true)
	if err != nil {
		return nil, lookupError(err, "student")
	}
	grades, err := s.StudentCourseGrades(ctx, pin)
	if err != nil {
		return nil, err
	}

	renderer, err := export.NewRenderer(parsed)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported format")
	}
	payload, err := renderer.Render(studentGradesDataset(student, grades))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grades")
	}
	s.logger.Debug("student grades exported", zap.String("pin", pin), zap.String("format", string(parsed)), zap.Int("rows", len(grades)))
	return &ExportFile{
		Filename:    fmt.Sprintf("grades-%s.%s", pin, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

func studentGradesDataset(student *models.StudentDetail, grades []models.StudentCourseGrade) export.Dataset {
	data := export.Dataset{
		Title:   fmt.Sprintf("Grades for %s %s (%s)", student.FirstName, student.LastName, student.PIN),
		Headers: []string{"Course", "Code", "Teacher", "Grade", "Assigned"},
		Rows:    make([][]string, 0, len(grades)),
	}
	for _, g := range grades {
		grade, assigned := "-", "-"
		if g.Grade != nil {
			grade = *g.Grade
		}
		if g.GradeAssignedAt != nil {
			assigned = g.GradeAssignedAt.Format("2006-01-02")
		}
		data.Rows = append(data.Rows, []string{
			g.CourseName,
			g.CourseCode,
			g.TeacherFirstName + " " + g.TeacherLastName,
			grade,
			assigned,
		})
	}
	return data
}

func cachedReport[T any](ctx context.Context, s *ReportService, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var cached []T
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}
	rows, err := load(ctx)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to load report")
	}
	_ = s.cache.Set(ctx, key, rows, s.ttl)
	return rows, nil
}
