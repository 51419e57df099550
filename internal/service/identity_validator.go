package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

const (
	// PinLength is the fixed length of a personal identity number.
	PinLength = 13
	pinLayout = "20060102"
)

// ValidatePinFormat reports whether pin has the shape YYYYMMDD-XXXX with a real calendar date
// from year 1 onwards.
// The four trailing characters are not constrained.
func ValidatePinFormat(pin string) bool {
	if len(pin) != PinLength || pin[8] != '-' {
		return false
	}
	date, err := time.Parse(pinLayout, pin[:8])
	return err == nil && date.Year() > 0
}

// NewValidator returns a validator with the "pin" tag registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return ValidatePinFormat(fl.Field().String())
	})
	return validate
}

type pinLookup interface {
	ExistsByPIN(ctx context.Context, pin string) (bool, error)
}

type courseCodeLookup interface {
	ExistsByCode(ctx context.Context, code string, excludeID *int64) (bool, error)
}

// IdentityValidator answers format and uniqueness questions about identifiers.
// Answers are observational; the unique constraints in the store remain authoritative
// for writes racing with the check.
type IdentityValidator struct {
	students  pinLookup
	employees pinLookup
	courses   courseCodeLookup
}

// NewIdentityValidator constructs an IdentityValidator.
func NewIdentityValidator(students, employees pinLookup, courses courseCodeLookup) *IdentityValidator {
	return &IdentityValidator{students: students, employees: employees, courses: courses}
}

// IsPinAvailable reports whether pin is well formed and unused by any student, active or not.
func (v *IdentityValidator) IsPinAvailable(ctx context.Context, pin string) (bool, error) {
	return v.pinAvailable(ctx, v.students, pin, "failed to check student pin")
}

// IsEmployeePinAvailable reports whether pin is well formed and unused by any employee.
func (v *IdentityValidator) IsEmployeePinAvailable(ctx context.Context, pin string) (bool, error) {
	return v.pinAvailable(ctx, v.employees, pin, "failed to check employee pin")
}

func (v *IdentityValidator) pinAvailable(ctx context.Context, lookup pinLookup, pin, message string) (bool, error) {
	if !ValidatePinFormat(pin) {
		return false, nil
	}
	exists, err := lookup.ExistsByPIN(ctx, pin)
	if err != nil {
		return false, appErrors.FromStore(err, message)
	}
	return !exists, nil
}

// IsCourseCodeAvailable reports whether no other course uses code. excludeID names the
// course being updated, if any. Codes compare case-sensitively.
func (v *IdentityValidator) IsCourseCodeAvailable(ctx context.Context, code string, excludeID *int64) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > models.CourseCodeMaxLength {
		return false, nil
	}
	exists, err := v.courses.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return false, appErrors.FromStore(err, "failed to check course code")
	}
	return !exists, nil
}
