package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type courseRepository interface {
	ListAll(ctx context.Context) ([]models.Course, error)
	ListActive(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
}

type courseCodeChecker interface {
	IsCourseCodeAvailable(ctx context.Context, code string, excludeID *int64) (bool, error)
}

type courseRetirer interface {
	DeactivateCourse(ctx context.Context, id int64) error
}

// CreateCourseRequest holds payload for adding a course.
type CreateCourseRequest struct {
	Code string `json:"code" validate:"required,max=10"`
	Name string `json:"name" validate:"required,max=250"`
}

// UpdateCourseRequest holds the mutable course fields.
type UpdateCourseRequest struct {
	Code     string `json:"code" validate:"required,max=10"`
	Name     string `json:"name" validate:"required,max=250"`
	IsActive *bool  `json:"is_active"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo      courseRepository
	identity  courseCodeChecker
	lifecycle courseRetirer
	cache     reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, identity courseCodeChecker, lifecycle courseRetirer, cache reportInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, identity: identity, lifecycle: lifecycle, cache: cache, validator: validate, logger: logger}
}

// List returns courses ordered by code. Inactive courses are included only when requested.
func (s *CourseService) List(ctx context.Context, includeInactive bool) ([]models.Course, error) {
	var (
		courses []models.Course
		err     error
	)
	if includeInactive {
		courses, err = s.repo.ListAll(ctx)
	} else {
		courses, err = s.repo.ListActive(ctx)
	}
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by ID regardless of activity.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.FromStore(err, "failed to load course")
	}
	return course, nil
}

// Create adds a course with a unique code.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.ensureCodeAvailable(ctx, req.Code, nil); err != nil {
		return nil, err
	}

	course := &models.Course{Code: req.Code, Name: req.Name, IsActive: true}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.FromStore(err, "failed to create course")
	}
	s.invalidate(ctx)
	s.logger.Info("course created", zap.Int64("id", course.ID), zap.String("code", course.Code))
	return course, nil
}

// Update changes code, name and optionally activity of a course.
func (s *CourseService) Update(ctx context.Context, id int64, req UpdateCourseRequest) (*models.Course, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Code != course.Code {
		if err := s.ensureCodeAvailable(ctx, req.Code, &id); err != nil {
			return nil, err
		}
	}

	course.Code = req.Code
	course.Name = req.Name
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.FromStore(err, "failed to update course")
	}
	s.invalidate(ctx)
	return course, nil
}

// Deactivate soft-deletes a course.
func (s *CourseService) Deactivate(ctx context.Context, id int64) error {
	return s.lifecycle.DeactivateCourse(ctx, id)
}

// CodeAvailable reports whether code is free, ignoring excludeID.
func (s *CourseService) CodeAvailable(ctx context.Context, code string, excludeID *int64) (bool, error) {
	return s.identity.IsCourseCodeAvailable(ctx, code, excludeID)
}

func (s *CourseService) ensureCodeAvailable(ctx context.Context, code string, excludeID *int64) error {
	available, err := s.identity.IsCourseCodeAvailable(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if !available {
		return appErrors.Clone(appErrors.ErrConflict, "course code already used")
	}
	return nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateReports(ctx)
	}
}
