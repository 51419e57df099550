package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

const employeeDetailSelect = `SELECT e.pin, e.first_name, e.last_name, e.gender, e.position, e.department_id, e.is_active, e.start_date,
        d.name AS department_name
        FROM employees e JOIN departments d ON d.id = e.department_id`

// EmployeeRepository handles persistence of staff records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// ListActive returns active employees ordered by last then first name.
func (r *EmployeeRepository) ListActive(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeDetail, error) {
	conditions := []string{"e.is_active = true"}
	var args []interface{}
	if filter.DepartmentID != nil {
		conditions = append(conditions, fmt.Sprintf("e.department_id = $%d", len(args)+1))
		args = append(args, *filter.DepartmentID)
	}
	if filter.Position != "" {
		conditions = append(conditions, fmt.Sprintf("e.position = $%d", len(args)+1))
		args = append(args, filter.Position)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY e.last_name, e.first_name", employeeDetailSelect, strings.Join(conditions, " AND "))
	var employees []models.EmployeeDetail
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// FindByPIN fetches an employee regardless of activity. exec may be a transaction.
func (r *EmployeeRepository) FindByPIN(ctx context.Context, exec sqlx.ExtContext, pin string) (*models.Employee, error) {
	const query = `SELECT pin, first_name, last_name, gender, position, department_id, is_active, start_date FROM employees WHERE pin = $1`
	var employee models.Employee
	if err := sqlx.GetContext(ctx, execOrDB(r.db, exec), &employee, query, pin); err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &employee, nil
}

// FindActiveDetail fetches an active employee with its department name.
func (r *EmployeeRepository) FindActiveDetail(ctx context.Context, pin string) (*models.EmployeeDetail, error) {
	query := employeeDetailSelect + " WHERE e.pin = $1 AND e.is_active = true"
	var detail models.EmployeeDetail
	if err := r.db.GetContext(ctx, &detail, query, pin); err != nil {
		return nil, fmt.Errorf("find employee detail: %w", err)
	}
	return &detail, nil
}

// ExistsByPIN reports whether any employee, active or not, holds the PIN.
func (r *EmployeeRepository) ExistsByPIN(ctx context.Context, pin string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM employees WHERE pin = $1 LIMIT 1", pin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check employee pin: %w", err)
	}
	return true, nil
}

// Create inserts an employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	const query = `INSERT INTO employees (pin, first_name, last_name, gender, position, department_id, is_active, start_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, employee.PIN, employee.FirstName, employee.LastName, employee.Gender,
		employee.Position, employee.DepartmentID, employee.IsActive, employee.StartDate); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of an employee.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	const query = `UPDATE employees SET first_name = $2, last_name = $3, gender = $4, position = $5, department_id = $6 WHERE pin = $1`
	res, err := r.db.ExecContext(ctx, query, employee.PIN, employee.FirstName, employee.LastName, employee.Gender,
		employee.Position, employee.DepartmentID)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return requireAffected(res, "employees")
}

// Deactivate marks an employee as inactive.
func (r *EmployeeRepository) Deactivate(ctx context.Context, pin string) error {
	return deactivate(ctx, r.db, "employees", "pin", pin)
}

// CurrentSalary returns the latest salary row of an employee.
func (r *EmployeeRepository) CurrentSalary(ctx context.Context, pin string) (*models.Salary, error) {
	const query = `SELECT id, employee_pin, amount FROM salaries WHERE employee_pin = $1 ORDER BY id DESC LIMIT 1`
	var salary models.Salary
	if err := r.db.GetContext(ctx, &salary, query, pin); err != nil {
		return nil, fmt.Errorf("current salary: %w", err)
	}
	return &salary, nil
}
