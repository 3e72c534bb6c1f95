package models

// EducationScheme selects the grading tables and best-subject rule that
// apply to a class. It is supplied by configuration and never inferred
// from result data.
type EducationScheme string

const (
	// SchemeOLevel is the ordinary-level secondary scheme (5 grades, best 7 subjects).
	SchemeOLevel EducationScheme = "O_LEVEL"
	// SchemeALevel is the advanced-level scheme (7 grades, best 3 principal subjects).
	SchemeALevel EducationScheme = "A_LEVEL"
)

// Valid reports whether the scheme is one of the supported values.
func (s EducationScheme) Valid() bool {
	return s == SchemeOLevel || s == SchemeALevel
}

// Grade is a letter grade within a scheme's alphabet.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeS Grade = "S"
	GradeF Grade = "F"
)

// Division is the coarse performance band computed from the points of the
// scheme-specific best-subject subset.
type Division string

const (
	DivisionI   Division = "I"
	DivisionII  Division = "II"
	DivisionIII Division = "III"
	DivisionIV  Division = "IV"
	DivisionV   Division = "V"
	// DivisionZero marks point totals outside every defined range,
	// including the degenerate empty best-subject set.
	DivisionZero Division = "0"
	// DivisionNone marks a student with no graded subjects at all.
	DivisionNone Division = ""
)
