package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records-api/internal/models"
)

var studentDetailColumns = []string{"pin", "first_name", "last_name", "gender", "class_id", "is_active", "enrollment_date", "class_name", "class_year", "class_section"}

func TestStudentRepositoryListActive(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStudentRepository(db)

	classID := int64(3)
	rows := sqlmock.NewRows(studentDetailColumns).
		AddRow("20050101-1234", "Ada", "Lovelace", "Female", classID, true, time.Now(), "1A", 1, "A")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND s.is_active = true AND s.class_id = $1 AND (LOWER(s.first_name) LIKE $2 OR LOWER(s.last_name) LIKE $2 OR s.pin LIKE $2) ORDER BY s.last_name, s.first_name")).
		WithArgs(classID, "%ada%").
		WillReturnRows(rows)

	students, err := repo.ListActive(context.Background(), models.StudentFilter{ClassID: &classID, Search: "Ada"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Lovelace", students[0].LastName)
	require.NotNil(t, students[0].ClassName)
	assert.Equal(t, "1A", *students[0].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySearchMatchesWildcardsLiterally(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LIKE $1")).
		WithArgs(`%50\%\_a\\b%`).
		WillReturnRows(sqlmock.NewRows(studentDetailColumns))

	students, err := repo.ListActive(context.Background(), models.StudentFilter{Search: `50%_A\b`})
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListAllIncludesInactive(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY s.last_name, s.first_name")).
		WillReturnRows(sqlmock.NewRows(studentDetailColumns).
			AddRow("20050101-1234", "Ada", "Lovelace", "Female", nil, false, time.Now(), nil, nil, nil))

	students, err := repo.ListAll(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.False(t, students[0].IsActive)
	assert.Nil(t, students[0].ClassID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByPIN(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE pin = $1 LIMIT 1")).
		WithArgs("20050101-1234").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE pin = $1 LIMIT 1")).
		WithArgs("20050101-9999").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByPIN(context.Background(), "20050101-1234")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByPIN(context.Background(), "20050101-9999")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateMissingRow(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET first_name = $2, last_name = $3, gender = $4, class_id = $5 WHERE pin = $1")).
		WithArgs("20050101-1234", "Ada", "Byron", "Female", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Student{PIN: "20050101-1234", FirstName: "Ada", LastName: "Byron", Gender: "Female"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeactivateIsSoft(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET is_active = false WHERE pin = $1")).
		WithArgs("20050101-1234").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET is_active = false WHERE pin = $1")).
		WithArgs("20050101-1234").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET is_active = false WHERE pin = $1")).
		WithArgs("19990101-0000").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Deactivate(context.Background(), "20050101-1234"))
	require.NoError(t, repo.Deactivate(context.Background(), "20050101-1234"))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), "19990101-0000"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
