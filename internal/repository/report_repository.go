package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

// ReportRepository reads the reporting views. It never writes.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// DepartmentSalaryStats returns average and total current salaries per department.
func (r *ReportRepository) DepartmentSalaryStats(ctx context.Context) ([]models.DepartmentSalaryStats, error) {
	const query = `SELECT department_id, department_name, employee_count, avg_salary, total_salary
FROM vw_avg_salary_by_department ORDER BY department_name`
	var stats []models.DepartmentSalaryStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("department salary stats: %w", err)
	}
	return stats, nil
}

// TeacherCountByDepartment returns the number of active teachers per department.
func (r *ReportRepository) TeacherCountByDepartment(ctx context.Context) ([]models.DepartmentTeacherCount, error) {
	const query = `SELECT department_id, department_name, teacher_count FROM vw_teachers_by_department ORDER BY department_name`
	var counts []models.DepartmentTeacherCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("teacher count by department: %w", err)
	}
	return counts, nil
}

// EmployeeOverview returns the tenure overview of active employees.
func (r *ReportRepository) EmployeeOverview(ctx context.Context) ([]models.EmployeeOverview, error) {
	const query = `SELECT employee_pin, first_name, last_name, position, department, years_worked
FROM vw_employee_overview ORDER BY last_name, first_name`
	var overview []models.EmployeeOverview
	if err := r.db.SelectContext(ctx, &overview, query); err != nil {
		return nil, fmt.Errorf("employee overview: %w", err)
	}
	return overview, nil
}

// StudentCourseGrades returns the active course enrollments of a student ordered by course name.
func (r *ReportRepository) StudentCourseGrades(ctx context.Context, pin string) ([]models.StudentCourseGrade, error) {
	const query = `SELECT student_pin, student_first_name, student_last_name, course_name, course_code,
teacher_first_name, teacher_last_name, TRIM(grade) AS grade, grade_assigned_date
FROM vw_student_course_grades WHERE student_pin = $1 ORDER BY course_name`
	var grades []models.StudentCourseGrade
	if err := r.db.SelectContext(ctx, &grades, query, pin); err != nil {
		return nil, fmt.Errorf("student course grades: %w", err)
	}
	return grades, nil
}
