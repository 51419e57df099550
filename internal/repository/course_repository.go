package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

const courseSelect = `SELECT id, code, name, is_active FROM courses`

// CourseRepository persists courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListAll returns every course ordered by code.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	return r.list(ctx, courseSelect+" ORDER BY code")
}

// ListActive returns active courses ordered by code.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	return r.list(ctx, courseSelect+" WHERE is_active = true ORDER BY code")
}

func (r *CourseRepository) list(ctx context.Context, query string) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course regardless of activity. exec may be a transaction.
func (r *CourseRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Course, error) {
	var course models.Course
	if err := sqlx.GetContext(ctx, execOrDB(r.db, exec), &course, courseSelect+" WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// ExistsByCode reports whether the code is taken, optionally ignoring one course.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string, excludeID *int64) (bool, error) {
	query := "SELECT 1 FROM courses WHERE code = $1"
	args := []interface{}{code}
	if excludeID != nil {
		query += " AND id <> $2"
		args = append(args, *excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create inserts a course and assigns its generated ID.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (code, name, is_active) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, course.Code, course.Name, course.IsActive).Scan(&course.ID); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update rewrites code, name and activity of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET code = $2, name = $3, is_active = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, course.ID, course.Code, course.Name, course.IsActive)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return requireAffected(res, "courses")
}

// Deactivate marks a course as inactive.
func (r *CourseRepository) Deactivate(ctx context.Context, id int64) error {
	return deactivate(ctx, r.db, "courses", "id", id)
}
