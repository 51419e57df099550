package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

// DepartmentRepository reads departments. Departments are reference data and are never mutated here.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns all departments ordered by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, "SELECT id, name FROM departments ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindByID fetches a department.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	var department models.Department
	if err := r.db.GetContext(ctx, &department, "SELECT id, name FROM departments WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find department: %w", err)
	}
	return &department, nil
}

// TotalSalary sums the current salary of every active employee in the department.
func (r *DepartmentRepository) TotalSalary(ctx context.Context, id int64) (float64, error) {
	const query = `SELECT COALESCE(SUM(cs.amount), 0)
        FROM employees e JOIN vw_current_salaries cs ON cs.employee_pin = e.pin
        WHERE e.department_id = $1 AND e.is_active = true`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, id); err != nil {
		return 0, fmt.Errorf("department total salary: %w", err)
	}
	return total, nil
}
