package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type studentRepository interface {
	ListActive(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error)
	ListAll(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error)
	FindDetailByPIN(ctx context.Context, pin string, includeInactive bool) (*models.StudentDetail, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type studentClassLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
}

type studentPinChecker interface {
	IsPinAvailable(ctx context.Context, pin string) (bool, error)
}

type studentRetirer interface {
	DeactivateStudent(ctx context.Context, pin string) error
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	PIN            string     `json:"pin" validate:"required,pin"`
	FirstName      string     `json:"first_name" validate:"required,max=200"`
	LastName       string     `json:"last_name" validate:"required,max=100"`
	Gender         string     `json:"gender" validate:"required,oneof=Male Female Other"`
	ClassID        *int64     `json:"class_id" validate:"omitempty,gt=0"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
}

// UpdateStudentRequest holds the mutable student fields. The PIN cannot change.
type UpdateStudentRequest struct {
	FirstName string `json:"first_name" validate:"required,max=200"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Gender    string `json:"gender" validate:"required,oneof=Male Female Other"`
	ClassID   *int64 `json:"class_id" validate:"omitempty,gt=0"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	classes   studentClassLookup
	identity  studentPinChecker
	lifecycle studentRetirer
	cache     reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, classes studentClassLookup, identity studentPinChecker, lifecycle studentRetirer, cache reportInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, identity: identity, lifecycle: lifecycle, cache: cache, validator: validate, logger: logger}
}

// List returns active students ordered by last then first name.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	students, err := s.repo.ListActive(ctx, filter)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list students")
	}
	return students, nil
}

// ListAll returns every student including deactivated ones.
func (s *StudentService) ListAll(ctx context.Context) ([]models.StudentDetail, error) {
	students, err := s.repo.ListAll(ctx, models.StudentFilter{})
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list students")
	}
	return students, nil
}

// Get returns an active student.
func (s *StudentService) Get(ctx context.Context, pin string) (*models.StudentDetail, error) {
	return s.find(ctx, pin, false)
}

// GetAny returns a student whether active or not.
func (s *StudentService) GetAny(ctx context.Context, pin string) (*models.StudentDetail, error) {
	return s.find(ctx, pin, true)
}

func (s *StudentService) find(ctx context.Context, pin string, includeInactive bool) (*models.StudentDetail, error) {
	if !ValidatePinFormat(pin) {
		return nil, appErrors.Clone(appErrors.ErrInvalidFormat, "pin must be YYYYMMDD-XXXX")
	}
	student, err := s.repo.FindDetailByPIN(ctx, pin, includeInactive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.FromStore(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. The PIN must be well formed and unused.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.PIN = strings.TrimSpace(req.PIN)
	if !ValidatePinFormat(req.PIN) {
		return nil, appErrors.Clone(appErrors.ErrInvalidFormat, "pin must be YYYYMMDD-XXXX")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	available, err := s.identity.IsPinAvailable(ctx, req.PIN)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, appErrors.Clone(appErrors.ErrConflict, "pin already used")
	}
	if err := s.ensureClass(ctx, req.ClassID); err != nil {
		return nil, err
	}

	student := &models.Student{
		PIN:            req.PIN,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Gender:         req.Gender,
		ClassID:        req.ClassID,
		IsActive:       true,
		EnrollmentDate: truncateToDay(time.Now().UTC()),
	}
	if req.EnrollmentDate != nil {
		student.EnrollmentDate = truncateToDay(req.EnrollmentDate.UTC())
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.FromStore(err, "failed to create student")
	}
	s.invalidate(ctx)
	s.logger.Info("student created", zap.String("pin", student.PIN))
	return student, nil
}

// Update modifies names, gender and class of an existing student.
func (s *StudentService) Update(ctx context.Context, pin string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	current, err := s.find(ctx, pin, true)
	if err != nil {
		return nil, err
	}
	if err := s.ensureClass(ctx, req.ClassID); err != nil {
		return nil, err
	}

	student := current.Student
	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Gender = req.Gender
	student.ClassID = req.ClassID
	if err := s.repo.Update(ctx, &student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.FromStore(err, "failed to update student")
	}
	s.invalidate(ctx)
	return &student, nil
}

// Deactivate soft-deletes a student.
func (s *StudentService) Deactivate(ctx context.Context, pin string) error {
	if !ValidatePinFormat(pin) {
		return appErrors.Clone(appErrors.ErrInvalidFormat, "pin must be YYYYMMDD-XXXX")
	}
	return s.lifecycle.DeactivateStudent(ctx, pin)
}

// PinAvailable reports whether a PIN can be used for a new student.
func (s *StudentService) PinAvailable(ctx context.Context, pin string) (bool, error) {
	return s.identity.IsPinAvailable(ctx, strings.TrimSpace(pin))
}

func (s *StudentService) ensureClass(ctx context.Context, classID *int64) error {
	if classID == nil {
		return nil
	}
	if _, err := s.classes.FindByID(ctx, *classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.FromStore(err, "failed to load class")
	}
	return nil
}

func (s *StudentService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateReports(ctx)
	}
}
