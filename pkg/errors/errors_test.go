package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestFromStoreClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{name: "no rows", err: fmt.Errorf("find student: %w", sql.ErrNoRows), code: ErrNotFound.Code},
		{name: "unique", err: &pq.Error{Code: "23505"}, code: ErrConflict.Code},
		{name: "foreign key", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23503"}), code: ErrNotFound.Code},
		{name: "other pq", err: &pq.Error{Code: "40001"}, code: ErrStoreFailure.Code},
		{name: "opaque", err: errors.New("connection reset"), code: ErrStoreFailure.Code},
		{name: "typed passthrough", err: Clone(ErrInvalidGrade, "bad"), code: ErrInvalidGrade.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromStore(tc.err, "store call")
			assert.Equal(t, tc.code, got.Code)
		})
	}
	assert.Nil(t, FromStore(nil, "noop"))
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", Clone(ErrNotFound, "student not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Status, got.Status)
}
