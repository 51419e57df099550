package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/pkg/database"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type gradeValueRepository interface {
	List(ctx context.Context) ([]models.GradeValue, error)
	FindByGrade(ctx context.Context, exec sqlx.ExtContext, grade string) (*models.GradeValue, error)
}

type enrollmentRepository interface {
	FindActiveForUpdate(ctx context.Context, exec sqlx.ExtContext, studentPIN string, courseID int64) (*models.CourseEnrollment, error)
	UpdateGrade(ctx context.Context, exec sqlx.ExtContext, id int64, grade string, assignedAt time.Time) (*models.CourseEnrollment, error)
	InsertGraded(ctx context.Context, exec sqlx.ExtContext, enrollment *models.CourseEnrollment) (*models.CourseEnrollment, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
}

type gradingStudentLookup interface {
	FindByPIN(ctx context.Context, exec sqlx.ExtContext, pin string) (*models.Student, error)
}

type gradingEmployeeLookup interface {
	FindByPIN(ctx context.Context, exec sqlx.ExtContext, pin string) (*models.Employee, error)
}

type gradingCourseLookup interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Course, error)
}

type studentGradeReader interface {
	StudentCourseGrades(ctx context.Context, pin string) ([]models.StudentCourseGrade, error)
}

// AssignGradeRequest is the payload for recording a grade.
type AssignGradeRequest struct {
	StudentPIN string `json:"student_pin" validate:"required,pin"`
	CourseID   int64  `json:"course_id" validate:"required,gt=0"`
	TeacherPIN string `json:"teacher_pin" validate:"required,pin"`
	Grade      string `json:"grade"`
}

// GradeRepositories groups the stores the grade engine reads and writes.
type GradeRepositories struct {
	Grades      gradeValueRepository
	Enrollments enrollmentRepository
	Students    gradingStudentLookup
	Employees   gradingEmployeeLookup
	Courses     gradingCourseLookup
	Reports     studentGradeReader
}

// GradeService records grades and exposes enrollment history.
type GradeService struct {
	db          database.TxBeginner
	grades      gradeValueRepository
	enrollments enrollmentRepository
	students    gradingStudentLookup
	employees   gradingEmployeeLookup
	courses     gradingCourseLookup
	reports     studentGradeReader
	cache       reportInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewGradeService constructs the grade engine.
func NewGradeService(db database.TxBeginner, repos GradeRepositories, cache reportInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		db:          db,
		grades:      repos.Grades,
		enrollments: repos.Enrollments,
		students:    repos.Students,
		employees:   repos.Employees,
		courses:     repos.Courses,
		reports:     repos.Reports,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// AssignGrade creates or updates the active enrollment of a student in a course with the
// given grade. Every step runs in one transaction: either the grade is stored or nothing is.
// An existing enrollment keeps its teacher and enrollment date.
func (s *GradeService) AssignGrade(ctx context.Context, req AssignGradeRequest) (*models.CourseEnrollment, error) {
	start := time.Now()
	if !ValidatePinFormat(req.StudentPIN) || !ValidatePinFormat(req.TeacherPIN) {
		s.metrics.RecordGradeAssignment(GradeOutcomeRejected, time.Since(start))
		return nil, appErrors.Clone(appErrors.ErrInvalidFormat, "student_pin and teacher_pin must be YYYYMMDD-XXXX")
	}
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordGradeAssignment(GradeOutcomeRejected, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	grade := strings.TrimSpace(req.Grade)
	assignedAt := s.now().UTC()
	var (
		result  *models.CourseEnrollment
		created bool
	)

	err := database.WithTx(ctx, s.db, database.ReadCommitted, func(tx *sqlx.Tx) error {
		if _, err := s.grades.FindByGrade(ctx, tx, grade); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrInvalidGrade, fmt.Sprintf("grade %q is not a recognised grade value", grade))
			}
			return appErrors.FromStore(err, "failed to look up grade")
		}
		if err := s.checkEligibility(ctx, tx, req); err != nil {
			return err
		}

		current, err := s.enrollments.FindActiveForUpdate(ctx, tx, req.StudentPIN, req.CourseID)
		switch {
		case err == nil:
			result, err = s.enrollments.UpdateGrade(ctx, tx, current.ID, grade, assignedAt)
		case errors.Is(err, sql.ErrNoRows):
			created = true
			result, err = s.enrollments.InsertGraded(ctx, tx, &models.CourseEnrollment{
				StudentPIN:      req.StudentPIN,
				CourseID:        req.CourseID,
				TeacherPIN:      req.TeacherPIN,
				Grade:           &grade,
				GradeAssignedAt: &assignedAt,
				EnrollmentDate:  truncateToDay(assignedAt),
				IsActive:        true,
			})
		}
		if err != nil {
			return appErrors.FromStore(err, "failed to store grade")
		}
		return nil
	})
	if err != nil {
		appErr := appErrors.FromStore(err, "failed to assign grade")
		outcome := GradeOutcomeRejected
		if appErr.Status >= 500 {
			outcome = GradeOutcomeFailed
		}
		s.metrics.RecordGradeAssignment(outcome, time.Since(start))
		s.logger.Warn("grade assignment failed",
			zap.String("student_pin", req.StudentPIN),
			zap.Int64("course_id", req.CourseID),
			zap.String("code", appErr.Code),
			zap.Error(err))
		return nil, appErr
	}

	outcome := GradeOutcomeUpdated
	if created {
		outcome = GradeOutcomeCreated
	}
	if s.cache != nil {
		s.cache.InvalidateReports(ctx)
	}
	s.metrics.RecordGradeAssignment(outcome, time.Since(start))
	s.logger.Info("grade assigned",
		zap.String("student_pin", req.StudentPIN),
		zap.Int64("course_id", req.CourseID),
		zap.String("grade", grade),
		zap.Int64("enrollment_id", result.ID),
		zap.String("outcome", outcome))
	return result, nil
}

func (s *GradeService) checkEligibility(ctx context.Context, tx sqlx.ExtContext, req AssignGradeRequest) error {
	student, err := s.students.FindByPIN(ctx, tx, req.StudentPIN)
	if err != nil {
		return lookupError(err, "student")
	}
	if !student.IsActive {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "student is inactive")
	}

	course, err := s.courses.FindByID(ctx, tx, req.CourseID)
	if err != nil {
		return lookupError(err, "course")
	}
	if !course.IsActive {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "course is inactive")
	}

	teacher, err := s.employees.FindByPIN(ctx, tx, req.TeacherPIN)
	if err != nil {
		return lookupError(err, "teacher")
	}
	if !teacher.IsActive {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher is inactive")
	}
	if teacher.Position != models.PositionTeacher {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "grading employee must hold the Teacher position")
	}
	return nil
}

func lookupError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.FromStore(err, "failed to load "+entity)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ListGradeValues returns the grade scale best grade first.
func (s *GradeService) ListGradeValues(ctx context.Context) ([]models.GradeValue, error) {
	grades, err := s.grades.List(ctx)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list grade values")
	}
	return grades, nil
}

// StudentGrades returns the course and grade rollup of a student ordered by course name.
// Deactivated students keep their history.
func (s *GradeService) StudentGrades(ctx context.Context, pin string) ([]models.StudentCourseGrade, error) {
	if !ValidatePinFormat(pin) {
		return nil, appErrors.Clone(appErrors.ErrInvalidFormat, "pin must be YYYYMMDD-XXXX")
	}
	if _, err := s.students.FindByPIN(ctx, nil, pin); err != nil {
		return nil, lookupError(err, "student")
	}
	grades, err := s.reports.StudentCourseGrades(ctx, pin)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to load student grades")
	}
	return grades, nil
}

// Enrollments lists enrollment history for a student or a course.
func (s *GradeService) Enrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	if filter.StudentPIN == "" && filter.CourseID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentPin or courseId is required")
	}
	enrollments, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list enrollments")
	}
	return enrollments, nil
}
