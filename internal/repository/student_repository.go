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

const studentDetailSelect = `SELECT s.pin, s.first_name, s.last_name, s.gender, s.class_id, s.is_active, s.enrollment_date,
        c.name AS class_name, c.year AS class_year, c.section AS class_section
        FROM students s LEFT JOIN classes c ON c.id = s.class_id`

// likeEscaper makes user input match literally under LIKE's default backslash escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListActive returns active students matching the filter ordered by last then first name.
func (r *StudentRepository) ListActive(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	return r.list(ctx, filter, true)
}

// ListAll returns every student including deactivated ones.
func (r *StudentRepository) ListAll(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	return r.list(ctx, filter, false)
}

func (r *StudentRepository) list(ctx context.Context, filter models.StudentFilter, activeOnly bool) ([]models.StudentDetail, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if activeOnly {
		conditions = append(conditions, "s.is_active = true")
	}
	if filter.ClassID != nil {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, *filter.ClassID)
	}
	if filter.Gender != "" {
		conditions = append(conditions, fmt.Sprintf("s.gender = $%d", len(args)+1))
		args = append(args, filter.Gender)
	}
	if filter.EnrollmentYear > 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM s.enrollment_date) = $%d", len(args)+1))
		args = append(args, filter.EnrollmentYear)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.first_name) LIKE $%d OR LOWER(s.last_name) LIKE $%d OR s.pin LIKE $%d)", n, n, n))
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(filter.Search))+"%")
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY s.last_name, s.first_name", studentDetailSelect, strings.Join(conditions, " AND "))
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListByClass returns the active students of a class.
func (r *StudentRepository) ListByClass(ctx context.Context, classID int64) ([]models.StudentDetail, error) {
	return r.ListActive(ctx, models.StudentFilter{ClassID: &classID})
}

// FindByPIN fetches a student regardless of activity. exec may be a transaction.
func (r *StudentRepository) FindByPIN(ctx context.Context, exec sqlx.ExtContext, pin string) (*models.Student, error) {
	const query = `SELECT pin, first_name, last_name, gender, class_id, is_active, enrollment_date FROM students WHERE pin = $1`
	var student models.Student
	if err := sqlx.GetContext(ctx, execOrDB(r.db, exec), &student, query, pin); err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindDetailByPIN fetches a student joined with its class. Inactive students are
// only returned when includeInactive is set.
func (r *StudentRepository) FindDetailByPIN(ctx context.Context, pin string, includeInactive bool) (*models.StudentDetail, error) {
	query := studentDetailSelect + " WHERE s.pin = $1"
	if !includeInactive {
		query += " AND s.is_active = true"
	}
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, pin); err != nil {
		return nil, fmt.Errorf("find student detail: %w", err)
	}
	return &detail, nil
}

// ExistsByPIN reports whether any student, active or not, holds the PIN.
func (r *StudentRepository) ExistsByPIN(ctx context.Context, pin string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE pin = $1 LIMIT 1", pin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student pin: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (pin, first_name, last_name, gender, class_id, is_active, enrollment_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, student.PIN, student.FirstName, student.LastName, student.Gender,
		student.ClassID, student.IsActive, student.EnrollmentDate); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of a student. The PIN is the key and is never rewritten.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET first_name = $2, last_name = $3, gender = $4, class_id = $5 WHERE pin = $1`
	res, err := r.db.ExecContext(ctx, query, student.PIN, student.FirstName, student.LastName, student.Gender, student.ClassID)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireAffected(res, "students")
}

// Deactivate marks a student as inactive.
func (r *StudentRepository) Deactivate(ctx context.Context, pin string) error {
	return deactivate(ctx, r.db, "students", "pin", pin)
}
