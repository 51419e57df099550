package models

import "time"

// GradeValue is an entry of the closed grade scale.
type GradeValue struct {
	Grade string `db:"grade" json:"grade"`
	Rank  int    `db:"rank" json:"rank"`
}

// CourseEnrollment links a student to a course and the teacher grading them.
type CourseEnrollment struct {
	ID              int64      `db:"id" json:"id"`
	StudentPIN      string     `db:"student_pin" json:"student_pin"`
	CourseID        int64      `db:"course_id" json:"course_id"`
	TeacherPIN      string     `db:"teacher_pin" json:"teacher_pin"`
	Grade           *string    `db:"grade" json:"grade,omitempty"`
	GradeAssignedAt *time.Time `db:"grade_assigned_date" json:"grade_assigned_at,omitempty"`
	EnrollmentDate  time.Time  `db:"enrollment_date" json:"enrollment_date"`
	IsActive        bool       `db:"is_active" json:"is_active"`
}

// EnrollmentState is the externally observable lifecycle of an enrollment.
type EnrollmentState string

const (
	EnrollmentStateNone     EnrollmentState = "NO_ENROLLMENT"
	EnrollmentStateUngraded EnrollmentState = "ENROLLED_UNGRADED"
	EnrollmentStateGraded   EnrollmentState = "ENROLLED_GRADED"
)

// State reports where the enrollment is in its lifecycle.
func (e *CourseEnrollment) State() EnrollmentState {
	if e == nil || !e.IsActive {
		return EnrollmentStateNone
	}
	if e.Grade == nil {
		return EnrollmentStateUngraded
	}
	return EnrollmentStateGraded
}

// EnrollmentDetail enriches an enrollment with names for display.
type EnrollmentDetail struct {
	CourseEnrollment
	StudentFirstName string `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string `db:"student_last_name" json:"student_last_name"`
	StudentActive    bool   `db:"student_active" json:"student_active"`
	CourseCode       string `db:"course_code" json:"course_code"`
	CourseName       string `db:"course_name" json:"course_name"`
	TeacherFirstName string `db:"teacher_first_name" json:"teacher_first_name"`
	TeacherLastName  string `db:"teacher_last_name" json:"teacher_last_name"`
}

// EnrollmentFilter scopes enrollment history queries. At least one field is expected.
type EnrollmentFilter struct {
	StudentPIN string
	CourseID   *int64
}
