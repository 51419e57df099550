package models

import "time"

// DepartmentSalaryStats aggregates current salaries of active employees per department.
type DepartmentSalaryStats struct {
	DepartmentID   int64   `db:"department_id" json:"department_id"`
	DepartmentName string  `db:"department_name" json:"department_name"`
	EmployeeCount  int     `db:"employee_count" json:"employee_count"`
	AvgSalary      float64 `db:"avg_salary" json:"avg_salary"`
	TotalSalary    float64 `db:"total_salary" json:"total_salary"`
}

// DepartmentTeacherCount counts active teachers per department.
type DepartmentTeacherCount struct {
	DepartmentID   int64  `db:"department_id" json:"department_id"`
	DepartmentName string `db:"department_name" json:"department_name"`
	TeacherCount   int    `db:"teacher_count" json:"teacher_count"`
}

// EmployeeOverview summarises tenure for active employees.
type EmployeeOverview struct {
	EmployeePIN string `db:"employee_pin" json:"employee_pin"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	Position    string `db:"position" json:"position"`
	Department  string `db:"department" json:"department"`
	YearsWorked *int   `db:"years_worked" json:"years_worked,omitempty"`
}

// StudentCourseGrade is one row of a student's course/grade rollup.
type StudentCourseGrade struct {
	StudentPIN       string     `db:"student_pin" json:"student_pin"`
	StudentFirstName string     `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string     `db:"student_last_name" json:"student_last_name"`
	CourseName       string     `db:"course_name" json:"course_name"`
	CourseCode       string     `db:"course_code" json:"course_code"`
	TeacherFirstName string     `db:"teacher_first_name" json:"teacher_first_name"`
	TeacherLastName  string     `db:"teacher_last_name" json:"teacher_last_name"`
	Grade            *string    `db:"grade" json:"grade,omitempty"`
	GradeAssignedAt  *time.Time `db:"grade_assigned_date" json:"grade_assigned_at,omitempty"`
}

// Pagination describes list metadata returned alongside collections.
type Pagination struct {
	TotalCount int `json:"total_count"`
}
