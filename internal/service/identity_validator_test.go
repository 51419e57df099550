package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type stubPinLookup struct {
	taken map[string]bool
	err   error
}

func (s stubPinLookup) ExistsByPIN(ctx context.Context, pin string) (bool, error) {
	return s.taken[pin], s.err
}

type stubCodeLookup struct {
	codes map[string]int64
}

func (s stubCodeLookup) ExistsByCode(ctx context.Context, code string, excludeID *int64) (bool, error) {
	id, ok := s.codes[code]
	if !ok {
		return false, nil
	}
	return excludeID == nil || *excludeID != id, nil
}

func TestValidatePinFormat(t *testing.T) {
	cases := map[string]bool{
		"20050101-1234": true,
		"20000229-0000": true,
		"20240230-1234": false,
		"20050101+1234": false,
		"2005010-12345": false,
		"20050101-123":  false,
		"":              false,
		"abcdefgh-1234": false,
		"20051301-1234": false,
		"20050101-ABCD": true,
		"00000101-0001": false,
		"00010101-0001": true,
	}
	for pin, want := range cases {
		assert.Equal(t, want, ValidatePinFormat(pin), pin)
	}
}

func TestIsPinAvailable(t *testing.T) {
	v := NewIdentityValidator(stubPinLookup{taken: map[string]bool{"20050101-1234": true}}, stubPinLookup{}, stubCodeLookup{})
	ctx := context.Background()

	ok, err := v.IsPinAvailable(ctx, "20050101-1234")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.IsPinAvailable(ctx, "20050101-9999")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsPinAvailable(ctx, "not-a-pin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsPinAvailableStoreFailure(t *testing.T) {
	v := NewIdentityValidator(stubPinLookup{err: errors.New("dial tcp: refused")}, stubPinLookup{}, stubCodeLookup{})

	_, err := v.IsPinAvailable(context.Background(), "20050101-1234")
	assert.ErrorIs(t, err, appErrors.ErrStoreFailure)
}

func TestIsCourseCodeAvailable(t *testing.T) {
	v := NewIdentityValidator(stubPinLookup{}, stubPinLookup{}, stubCodeLookup{codes: map[string]int64{"MATH1": 4}})
	ctx := context.Background()

	ok, err := v.IsCourseCodeAvailable(ctx, "MATH1", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	self := int64(4)
	ok, err = v.IsCourseCodeAvailable(ctx, "MATH1", &self)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsCourseCodeAvailable(ctx, "math1", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.IsCourseCodeAvailable(ctx, "ABCDEFGHIJK", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidatorPinTag(t *testing.T) {
	type payload struct {
		PIN string `validate:"required,pin"`
	}
	validate := NewValidator()
	assert.NoError(t, validate.Struct(payload{PIN: "19991231-0001"}))
	assert.Error(t, validate.Struct(payload{PIN: "19991231_0001"}))
}
