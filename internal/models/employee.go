package models

import "time"

// Known employee positions.
const (
	PositionPrincipal     = "Principal"
	PositionAdministrator = "Administrator"
	PositionTeacher       = "Teacher"
)

// Positions lists the accepted values for Employee.Position.
var Positions = []string{PositionPrincipal, PositionAdministrator, PositionTeacher}

// Employee is a member of staff. Teachers are employees with the Teacher position.
type Employee struct {
	PIN          string    `db:"pin" json:"pin"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Gender       string    `db:"gender" json:"gender"`
	Position     string    `db:"position" json:"position"`
	DepartmentID int64     `db:"department_id" json:"department_id"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
}

// EmployeeDetail joins the employee with its department.
type EmployeeDetail struct {
	Employee
	DepartmentName string   `db:"department_name" json:"department_name"`
	CurrentSalary  *float64 `db:"-" json:"current_salary,omitempty"`
}

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	DepartmentID *int64
	Position     string
}

// Salary is one salary row. An employee may have several; the highest id is current.
type Salary struct {
	ID          int64   `db:"id" json:"id"`
	EmployeePIN string  `db:"employee_pin" json:"employee_pin"`
	Amount      float64 `db:"amount" json:"amount"`
}
