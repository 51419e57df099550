package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

// EntityKind names the soft-deletable collections.
type EntityKind string

const (
	EntityStudent  EntityKind = "student"
	EntityEmployee EntityKind = "employee"
	EntityCourse   EntityKind = "course"
)

// EntityRef identifies one soft-deletable record. Students and employees are keyed
// by PIN, courses by ID.
type EntityRef struct {
	Kind EntityKind
	PIN  string
	ID   int64
}

func (r EntityRef) String() string {
	if r.Kind == EntityCourse {
		return fmt.Sprintf("%s:%d", r.Kind, r.ID)
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.PIN)
}

type pinDeactivator interface {
	Deactivate(ctx context.Context, pin string) error
}

type idDeactivator interface {
	Deactivate(ctx context.Context, id int64) error
}

type reportInvalidator interface {
	InvalidateReports(ctx context.Context)
}

// LifecycleService retires records by clearing their active flag. Rows are never removed
// so enrollments and salaries keep valid references.
type LifecycleService struct {
	students  pinDeactivator
	employees pinDeactivator
	courses   idDeactivator
	cache     reportInvalidator
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewLifecycleService constructs the lifecycle manager. cache and metrics may be nil.
func NewLifecycleService(students, employees pinDeactivator, courses idDeactivator, cache reportInvalidator, metrics *MetricsService, logger *zap.Logger) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{students: students, employees: employees, courses: courses, cache: cache, metrics: metrics, logger: logger}
}

// Deactivate marks the referenced entity inactive. Missing entities yield NotFound;
// deactivating an inactive entity succeeds.
func (s *LifecycleService) Deactivate(ctx context.Context, ref EntityRef) error {
	var err error
	switch ref.Kind {
	case EntityStudent:
		err = s.students.Deactivate(ctx, ref.PIN)
	case EntityEmployee:
		err = s.employees.Deactivate(ctx, ref.PIN)
	case EntityCourse:
		err = s.courses.Deactivate(ctx, ref.ID)
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown entity kind %q", ref.Kind))
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", ref.Kind))
		}
		return appErrors.FromStore(err, fmt.Sprintf("failed to deactivate %s", ref.Kind))
	}

	if s.cache != nil {
		s.cache.InvalidateReports(ctx)
	}
	s.metrics.RecordDeactivation(ref.Kind)
	s.logger.Info("entity deactivated", zap.String("entity", ref.String()))
	return nil
}

// DeactivateStudent retires a student by PIN.
func (s *LifecycleService) DeactivateStudent(ctx context.Context, pin string) error {
	return s.Deactivate(ctx, EntityRef{Kind: EntityStudent, PIN: pin})
}

// DeactivateEmployee retires an employee by PIN.
func (s *LifecycleService) DeactivateEmployee(ctx context.Context, pin string) error {
	return s.Deactivate(ctx, EntityRef{Kind: EntityEmployee, PIN: pin})
}

// DeactivateCourse retires a course by ID.
func (s *LifecycleService) DeactivateCourse(ctx context.Context, id int64) error {
	return s.Deactivate(ctx, EntityRef{Kind: EntityCourse, ID: id})
}
