package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

const enrollmentColumns = `id, student_pin, course_id, teacher_pin, TRIM(grade) AS grade, grade_assigned_date, enrollment_date, is_active`

// EnrollmentRepository persists course enrollments and their grades.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindActiveForUpdate locks the active enrollment of a student in a course.
// It must run inside a transaction for the lock to hold.
func (r *EnrollmentRepository) FindActiveForUpdate(ctx context.Context, exec sqlx.ExtContext, studentPIN string, courseID int64) (*models.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments
        WHERE student_pin = $1 AND course_id = $2 AND is_active = true FOR UPDATE`
	var enrollment models.CourseEnrollment
	if err := sqlx.GetContext(ctx, execOrDB(r.db, exec), &enrollment, query, studentPIN, courseID); err != nil {
		return nil, fmt.Errorf("find active enrollment: %w", err)
	}
	return &enrollment, nil
}

// UpdateGrade sets the grade and its timestamp. Teacher and enrollment date are left as they are.
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, exec sqlx.ExtContext, id int64, grade string, assignedAt time.Time) (*models.CourseEnrollment, error) {
	query := `UPDATE course_enrollments SET grade = $2, grade_assigned_date = $3 WHERE id = $1 RETURNING ` + enrollmentColumns
	var enrollment models.CourseEnrollment
	if err := sqlx.GetContext(ctx, execOrDB(r.db, exec), &enrollment, query, id, grade, assignedAt); err != nil {
		return nil, fmt.Errorf("update enrollment grade: %w", err)
	}
	return &enrollment, nil
}

// InsertGraded creates an active graded enrollment. When a concurrent writer committed an
// active enrollment for the same pair first, that row receives the grade instead.
func (r *EnrollmentRepository) InsertGraded(ctx context.Context, exec sqlx.ExtContext, enrollment *models.CourseEnrollment) (*models.CourseEnrollment, error) {
	query := `INSERT INTO course_enrollments (student_pin, course_id, teacher_pin, grade, grade_assigned_date, enrollment_date, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, true)
        ON CONFLICT (student_pin, course_id) WHERE is_active
        DO UPDATE SET grade = EXCLUDED.grade, grade_assigned_date = EXCLUDED.grade_assigned_date
        RETURNING ` + enrollmentColumns
	var stored models.CourseEnrollment
	if err := sqlx.GetContext(ctx, execOrDB(r.db, exec), &stored, query,
		enrollment.StudentPIN, enrollment.CourseID, enrollment.TeacherPIN, enrollment.Grade,
		enrollment.GradeAssignedAt, enrollment.EnrollmentDate); err != nil {
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}
	return &stored, nil
}

// List returns enrollment history for a student or a course, including rows whose
// student has since been deactivated.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.StudentPIN != "" {
		conditions = append(conditions, fmt.Sprintf("ce.student_pin = $%d", len(args)+1))
		args = append(args, filter.StudentPIN)
	}
	if filter.CourseID != nil {
		conditions = append(conditions, fmt.Sprintf("ce.course_id = $%d", len(args)+1))
		args = append(args, *filter.CourseID)
	}

	query := fmt.Sprintf(`SELECT ce.id, ce.student_pin, ce.course_id, ce.teacher_pin, TRIM(ce.grade) AS grade, ce.grade_assigned_date,
        ce.enrollment_date, ce.is_active,
        s.first_name AS student_first_name, s.last_name AS student_last_name, s.is_active AS student_active,
        c.code AS course_code, c.name AS course_name,
        t.first_name AS teacher_first_name, t.last_name AS teacher_last_name
        FROM course_enrollments ce
        JOIN students s ON s.pin = ce.student_pin
        JOIN courses c ON c.id = ce.course_id
        JOIN employees t ON t.pin = ce.teacher_pin
        WHERE %s ORDER BY c.code, s.last_name, s.first_name`, strings.Join(conditions, " AND "))

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
