package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type classRepository interface {
	ListActive(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id int64) (*models.Class, error)
}

type classRosterRepository interface {
	ListByClass(ctx context.Context, classID int64) ([]models.StudentDetail, error)
}

// ClassService exposes homeroom classes and their rosters.
type ClassService struct {
	classes  classRepository
	students classRosterRepository
}

// NewClassService constructs the class service.
func NewClassService(classes classRepository, students classRosterRepository) *ClassService {
	return &ClassService{classes: classes, students: students}
}

// List returns active classes ordered by year and section.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.classes.ListActive(ctx)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list classes")
	}
	return classes, nil
}

// Students returns the active students of a class.
func (s *ClassService) Students(ctx context.Context, classID int64) ([]models.StudentDetail, error) {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.FromStore(err, "failed to load class")
	}
	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list class students")
	}
	return students, nil
}
