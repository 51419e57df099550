package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records-api/internal/models"
)

var enrollmentRowColumns = []string{"id", "student_pin", "course_id", "teacher_pin", "grade", "grade_assigned_date", "enrollment_date", "is_active"}

func TestEnrollmentRepositoryFindActiveForUpdateLocks(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM course_enrollments\s+WHERE student_pin = \$1 AND course_id = \$2 AND is_active = true FOR UPDATE`).
		WithArgs("20050101-1234", int64(5)).
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow(9, "20050101-1234", 5, "19800101-0001", nil, nil, time.Now(), true))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	enrollment, err := repo.FindActiveForUpdate(context.Background(), tx, "20050101-1234", 5)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.Equal(t, int64(9), enrollment.ID)
	assert.Equal(t, models.EnrollmentStateUngraded, enrollment.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryInsertGradedUpsertsOnActivePair(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	grade := "B"
	mock.ExpectQuery(`ON CONFLICT \(student_pin, course_id\) WHERE is_active\s+DO UPDATE SET grade = EXCLUDED.grade, grade_assigned_date = EXCLUDED.grade_assigned_date\s+RETURNING`).
		WithArgs("20050101-1234", int64(5), "19800101-0001", &grade, &now, now).
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow(11, "20050101-1234", 5, "19800101-0001", "B", now, now, true))

	stored, err := repo.InsertGraded(context.Background(), nil, &models.CourseEnrollment{
		StudentPIN:      "20050101-1234",
		CourseID:        5,
		TeacherPIN:      "19800101-0001",
		Grade:           &grade,
		GradeAssignedAt: &now,
		EnrollmentDate:  now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), stored.ID)
	assert.Equal(t, models.EnrollmentStateGraded, stored.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByStudent(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	cols := append(append([]string{}, enrollmentRowColumns...),
		"student_first_name", "student_last_name", "student_active", "course_code", "course_name", "teacher_first_name", "teacher_last_name")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND ce.student_pin = $1 ORDER BY c.code")).
		WithArgs("20050101-1234").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(9, "20050101-1234", 5, "19800101-0001", "A", time.Now(), time.Now(), true,
				"Ada", "Lovelace", false, "MATH1", "Mathematics 1", "Alan", "Turing"))

	rows, err := repo.List(context.Background(), models.EnrollmentFilter{StudentPIN: "20050101-1234"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].StudentActive)
	assert.Equal(t, "MATH1", rows[0].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
