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

type employeeRepository interface {
	ListActive(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeDetail, error)
	FindActiveDetail(ctx context.Context, pin string) (*models.EmployeeDetail, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	CurrentSalary(ctx context.Context, pin string) (*models.Salary, error)
}

type departmentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Department, error)
}

type employeePinChecker interface {
	IsEmployeePinAvailable(ctx context.Context, pin string) (bool, error)
}

type employeeRetirer interface {
	DeactivateEmployee(ctx context.Context, pin string) error
}

// CreateEmployeeRequest holds payload for hiring an employee.
type CreateEmployeeRequest struct {
	PIN          string     `json:"pin" validate:"required,pin"`
	FirstName    string     `json:"first_name" validate:"required,max=200"`
	LastName     string     `json:"last_name" validate:"required,max=100"`
	Gender       string     `json:"gender" validate:"required,oneof=Male Female Other"`
	Position     string     `json:"position" validate:"required,oneof=Principal Administrator Teacher"`
	DepartmentID int64      `json:"department_id" validate:"required,gt=0"`
	StartDate    *time.Time `json:"start_date"`
}

// UpdateEmployeeRequest holds the mutable employee fields.
type UpdateEmployeeRequest struct {
	FirstName    string `json:"first_name" validate:"required,max=200"`
	LastName     string `json:"last_name" validate:"required,max=100"`
	Gender       string `json:"gender" validate:"required,oneof=Male Female Other"`
	Position     string `json:"position" validate:"required,oneof=Principal Administrator Teacher"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
}

// EmployeeService handles staff use-cases.
type EmployeeService struct {
	repo        employeeRepository
	departments departmentLookup
	identity    employeePinChecker
	lifecycle   employeeRetirer
	cache       reportInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeRepository, departments departmentLookup, identity employeePinChecker, lifecycle employeeRetirer, cache reportInvalidator, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, departments: departments, identity: identity, lifecycle: lifecycle, cache: cache, validator: validate, logger: logger}
}

// List returns active employees, optionally narrowed to a department or position.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeDetail, error) {
	if filter.Position != "" && !validPosition(filter.Position) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown position")
	}
	employees, err := s.repo.ListActive(ctx, filter)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list employees")
	}
	return employees, nil
}

// Get returns an active employee with the current salary when one is on record.
func (s *EmployeeService) Get(ctx context.Context, pin string) (*models.EmployeeDetail, error) {
	employee, err := s.find(ctx, pin)
	if err != nil {
		return nil, err
	}
	salary, err := s.repo.CurrentSalary(ctx, pin)
	switch {
	case err == nil:
		employee.CurrentSalary = &salary.Amount
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.FromStore(err, "failed to load salary")
	}
	return employee, nil
}

func (s *EmployeeService) find(ctx context.Context, pin string) (*models.EmployeeDetail, error) {
	if !ValidatePinFormat(pin) {
		return nil, appErrors.Clone(appErrors.ErrInvalidFormat, "pin must be YYYYMMDD-XXXX")
	}
	employee, err := s.repo.FindActiveDetail(ctx, pin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.FromStore(err, "failed to load employee")
	}
	return employee, nil
}

// Create hires a new employee.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	req.PIN = strings.TrimSpace(req.PIN)
	if !ValidatePinFormat(req.PIN) {
		return nil, appErrors.Clone(appErrors.ErrInvalidFormat, "pin must be YYYYMMDD-XXXX")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	available, err := s.identity.IsEmployeePinAvailable(ctx, req.PIN)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, appErrors.Clone(appErrors.ErrConflict, "pin already used")
	}
	if err := s.ensureDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	employee := &models.Employee{
		PIN:          req.PIN,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Gender:       req.Gender,
		Position:     req.Position,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
		StartDate:    truncateToDay(time.Now().UTC()),
	}
	if req.StartDate != nil {
		employee.StartDate = truncateToDay(req.StartDate.UTC())
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.FromStore(err, "failed to create employee")
	}
	s.invalidate(ctx)
	s.logger.Info("employee created", zap.String("pin", employee.PIN), zap.String("position", employee.Position))
	return employee, nil
}

// Update modifies an active employee.
func (s *EmployeeService) Update(ctx context.Context, pin string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	current, err := s.find(ctx, pin)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	employee := current.Employee
	employee.FirstName = strings.TrimSpace(req.FirstName)
	employee.LastName = strings.TrimSpace(req.LastName)
	employee.Gender = req.Gender
	employee.Position = req.Position
	employee.DepartmentID = req.DepartmentID
	if err := s.repo.Update(ctx, &employee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.FromStore(err, "failed to update employee")
	}
	s.invalidate(ctx)
	return &employee, nil
}

// Deactivate soft-deletes an employee. Enrollments they graded keep referencing them.
func (s *EmployeeService) Deactivate(ctx context.Context, pin string) error {
	if !ValidatePinFormat(pin) {
		return appErrors.Clone(appErrors.ErrInvalidFormat, "pin must be YYYYMMDD-XXXX")
	}
	return s.lifecycle.DeactivateEmployee(ctx, pin)
}

func (s *EmployeeService) ensureDepartment(ctx context.Context, id int64) error {
	if _, err := s.departments.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return appErrors.FromStore(err, "failed to load department")
	}
	return nil
}

func (s *EmployeeService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateReports(ctx)
	}
}

func validPosition(position string) bool {
	for _, p := range models.Positions {
		if p == position {
			return true
		}
	}
	return false
}
