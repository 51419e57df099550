package models

import "time"

// Student represents a learner registered in the school. The PIN never changes once assigned.
type Student struct {
	PIN            string    `db:"pin" json:"pin"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Gender         string    `db:"gender" json:"gender"`
	ClassID        *int64    `db:"class_id" json:"class_id,omitempty"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
}

// StudentDetail joins the student with its class.
type StudentDetail struct {
	Student
	ClassName    *string `db:"class_name" json:"class_name,omitempty"`
	ClassYear    *int    `db:"class_year" json:"class_year,omitempty"`
	ClassSection *string `db:"class_section" json:"class_section,omitempty"`
}

// StudentFilter narrows student listings. Zero values are ignored.
type StudentFilter struct {
	ClassID        *int64
	Gender         string
	EnrollmentYear int
	Search         string
}
