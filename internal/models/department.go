package models

// Department groups employees. Departments are never removed.
type Department struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Class is a homeroom group students may belong to.
type Class struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Year     int    `db:"year" json:"year"`
	Section  string `db:"section" json:"section"`
	IsActive bool   `db:"is_active" json:"is_active"`
}
