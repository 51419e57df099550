package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records-api/internal/models"
)

func TestCourseRepositoryCreateAssignsID(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO courses (code, name, is_active) VALUES ($1, $2, $3) RETURNING id")).
		WithArgs("MATH1", "Mathematics 1", true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	course := &models.Course{Code: "MATH1", Name: "Mathematics 1", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(42), course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsByCodeExcludingSelf(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCourseRepository(db)

	self := int64(7)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE code = $1 AND id <> $2 LIMIT 1")).
		WithArgs("MATH1", self).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByCode(context.Background(), "MATH1", &self)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListActive(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, is_active FROM courses WHERE is_active = true ORDER BY code")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "is_active"}).
			AddRow(1, "ENG1", "English 1", true).
			AddRow(2, "MATH1", "Mathematics 1", true))

	courses, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
