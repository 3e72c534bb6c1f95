package models

import "time"

// Student is a registered learner attached to a class.
type Student struct {
	ID          string    `db:"id" json:"id"`
	AdmissionNo string    `db:"admission_no" json:"admission_no"`
	FullName    string    `db:"full_name" json:"full_name"`
	ClassID     string    `db:"class_id" json:"class_id"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Class groups students and carries the education scheme applied to
// every report generated for it.
type Class struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Level     string          `db:"level" json:"level"`
	Scheme    EducationScheme `db:"scheme" json:"scheme"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ClassRoster pairs a class with its active students.
type ClassRoster struct {
	Class    Class     `json:"class"`
	Students []Student `json:"students"`
}

// Exam identifies one examination sitting.
type Exam struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Year      int       `db:"year" json:"year"`
	Term      string    `db:"term" json:"term"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
