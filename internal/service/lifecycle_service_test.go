package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type memoryPinStore struct {
	active map[string]bool
	err    error
}

func (m *memoryPinStore) Deactivate(ctx context.Context, pin string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.active[pin]; !ok {
		return fmt.Errorf("students: %w", sql.ErrNoRows)
	}
	m.active[pin] = false
	return nil
}

type memoryCourseStore struct {
	active map[int64]bool
}

func (m *memoryCourseStore) Deactivate(ctx context.Context, id int64) error {
	if _, ok := m.active[id]; !ok {
		return fmt.Errorf("courses: %w", sql.ErrNoRows)
	}
	m.active[id] = false
	return nil
}

func newLifecycle() (*LifecycleService, *memoryPinStore, *memoryCourseStore, *recordingInvalidator) {
	students := &memoryPinStore{active: map[string]bool{"20050101-1234": true}}
	employees := &memoryPinStore{active: map[string]bool{"19800101-0001": true}}
	courses := &memoryCourseStore{active: map[int64]bool{5: true}}
	invalidator := &recordingInvalidator{}
	return NewLifecycleService(students, employees, courses, invalidator, NewMetricsService(), nil), students, courses, invalidator
}

func TestDeactivateStudentIsIdempotent(t *testing.T) {
	svc, students, _, invalidator := newLifecycle()
	ctx := context.Background()

	require.NoError(t, svc.DeactivateStudent(ctx, "20050101-1234"))
	assert.False(t, students.active["20050101-1234"])

	require.NoError(t, svc.DeactivateStudent(ctx, "20050101-1234"))
	assert.False(t, students.active["20050101-1234"])
	assert.Equal(t, 2, invalidator.calls)
}

func TestDeactivateMissingEntityIsNotFound(t *testing.T) {
	svc, _, _, invalidator := newLifecycle()
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeactivateStudent(ctx, "19990101-0000"), appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.DeactivateEmployee(ctx, "19990101-0000"), appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.DeactivateCourse(ctx, 99), appErrors.ErrNotFound)
	assert.Zero(t, invalidator.calls)
}

func TestDeactivateCourse(t *testing.T) {
	svc, _, courses, _ := newLifecycle()

	require.NoError(t, svc.Deactivate(context.Background(), EntityRef{Kind: EntityCourse, ID: 5}))
	assert.False(t, courses.active[5])
}

func TestDeactivateUnknownKind(t *testing.T) {
	svc, _, _, _ := newLifecycle()

	err := svc.Deactivate(context.Background(), EntityRef{Kind: "department", ID: 1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestDeactivateStoreFailure(t *testing.T) {
	svc, students, _, _ := newLifecycle()
	students.err = fmt.Errorf("deactivate students: %w", sql.ErrConnDone)

	err := svc.DeactivateStudent(context.Background(), "20050101-1234")
	assert.ErrorIs(t, err, appErrors.ErrStoreFailure)
}
