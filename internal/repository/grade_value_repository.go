package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

// GradeValueRepository reads the grade scale.
type GradeValueRepository struct {
	db *sqlx.DB
}

// NewGradeValueRepository constructs a GradeValueRepository.
func NewGradeValueRepository(db *sqlx.DB) *GradeValueRepository {
	return &GradeValueRepository{db: db}
}

// List returns the grade scale best grade first.
func (r *GradeValueRepository) List(ctx context.Context) ([]models.GradeValue, error) {
	var grades []models.GradeValue
	if err := r.db.SelectContext(ctx, &grades, "SELECT TRIM(grade) AS grade, rank FROM grade_values ORDER BY rank DESC"); err != nil {
		return nil, fmt.Errorf("list grade values: %w", err)
	}
	return grades, nil
}

// FindByGrade looks up a grade by its trimmed value. exec may be a transaction.
func (r *GradeValueRepository) FindByGrade(ctx context.Context, exec sqlx.ExtContext, grade string) (*models.GradeValue, error) {
	const query = `SELECT TRIM(grade) AS grade, rank FROM grade_values WHERE TRIM(grade) = $1`
	var value models.GradeValue
	if err := sqlx.GetContext(ctx, execOrDB(r.db, exec), &value, query, grade); err != nil {
		return nil, fmt.Errorf("find grade value: %w", err)
	}
	return &value, nil
}
