package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id int64) (*models.Department, error)
	TotalSalary(ctx context.Context, id int64) (float64, error)
}

// DepartmentTotalSalary is the monthly payroll of a department.
type DepartmentTotalSalary struct {
	DepartmentID   int64   `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	TotalSalary    float64 `json:"total_salary"`
}

// DepartmentService exposes departments and their payroll.
type DepartmentService struct {
	repo departmentRepository
}

// NewDepartmentService constructs the department service.
func NewDepartmentService(repo departmentRepository) *DepartmentService {
	return &DepartmentService{repo: repo}
}

// List returns departments ordered by name.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list departments")
	}
	return departments, nil
}

// TotalSalary sums the current salaries of active employees in a department.
func (s *DepartmentService) TotalSalary(ctx context.Context, id int64) (*DepartmentTotalSalary, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.FromStore(err, "failed to load department")
	}
	total, err := s.repo.TotalSalary(ctx, id)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to sum department salaries")
	}
	return &DepartmentTotalSalary{DepartmentID: department.ID, DepartmentName: department.Name, TotalSalary: total}, nil
}
