package models

// CourseCodeMaxLength bounds Course.Code.
const CourseCodeMaxLength = 10

// Course is a subject students enroll in. Courses are deactivated, never removed.
type Course struct {
	ID       int64  `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"is_active"`
}
