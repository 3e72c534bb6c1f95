package models

import "time"

// SubjectResult is one recorded mark for a student + subject + exam.
type SubjectResult struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	SubjectID     string    `db:"subject_id" json:"subject_id"`
	SubjectCode   string    `db:"subject_code" json:"subject_code"`
	SubjectName   string    `db:"subject_name" json:"subject_name"`
	ExamID        string    `db:"exam_id" json:"exam_id"`
	MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
	IsPrincipal   bool      `db:"is_principal" json:"is_principal"`
	IsSubsidiary  bool      `db:"is_subsidiary" json:"is_subsidiary"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// GradedResult pairs a SubjectResult with its derived grade and points.
// It is always recomputed from the source marks, never stored on its own.
type GradedResult struct {
	SubjectResult
	Grade  Grade  `json:"grade"`
	Points int    `json:"points"`
	Remark string `json:"remark"`
}

// DivisionResult holds the best-subject subset and the division computed
// from its point total. BestPoints always equals the sum of the points of
// BestSubjects.
type DivisionResult struct {
	BestSubjects        []GradedResult `json:"best_subjects"`
	BestPoints          int            `json:"best_points"`
	Division            Division       `json:"division"`
	MissingSubjectCount int            `json:"missing_subject_count"`
	Warnings            []string       `json:"warnings,omitempty"`
}

// GradeDistribution tallies letter grades across all graded subjects.
type GradeDistribution map[Grade]int

// SubjectError records a per-subject validation failure that degraded a
// report row without aborting it.
type SubjectError struct {
	SubjectID string `json:"subject_id"`
	Reason    string `json:"reason"`
}

// StudentReportRow is one student's aggregated view within an exam.
// Rank is zero until class-level aggregation assigns it.
type StudentReportRow struct {
	StudentID      string            `json:"student_id"`
	StudentName    string            `json:"student_name,omitempty"`
	SubjectResults []GradedResult    `json:"subject_results"`
	TotalMarks     float64           `json:"total_marks"`
	AverageMarks   float64           `json:"average_marks"`
	Distribution   GradeDistribution `json:"grade_distribution"`
	DivisionResult DivisionResult    `json:"division_result"`
	Rank           int               `json:"rank,omitempty"`
	SubjectErrors  []SubjectError    `json:"subject_errors,omitempty"`
}

// StudentReport wraps a single aggregated row with its request scope.
type StudentReport struct {
	StudentID   string           `json:"student_id"`
	ExamID      string           `json:"exam_id"`
	Scheme      EducationScheme  `json:"scheme"`
	Row         StudentReportRow `json:"row"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// ClassReport is the ranked aggregation of every student in a class for
// one exam under one scheme.
type ClassReport struct {
	ClassID     string             `json:"class_id"`
	ClassName   string             `json:"class_name,omitempty"`
	ExamID      string             `json:"exam_id"`
	Scheme      EducationScheme    `json:"scheme"`
	Rows        []StudentReportRow `json:"rows"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// ResultFilter narrows result listings.
type ResultFilter struct {
	StudentID string
	SubjectID string
	ExamID    string
	ClassID   string
}
