package grading

import (
	"fmt"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

// InvalidMarksError reports marks outside the accepted [0,100] range or a
// non-numeric value. The offending subject is skipped; computation for
// other subjects proceeds.
type InvalidMarksError struct {
	Marks float64
}

func (e *InvalidMarksError) Error() string {
	return fmt.Sprintf("marks %v outside valid range [0,100]", e.Marks)
}

// UnknownSchemeError reports a scheme value outside the supported set.
// It is fatal for the whole aggregation call.
type UnknownSchemeError struct {
	Scheme models.EducationScheme
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("unknown education scheme %q", string(e.Scheme))
}

// AmbiguousTimestampError is returned when two or more duplicate
// candidates tie exactly on updated_at while disagreeing on marks, so no
// canonical record can be chosen. Both conflicting records are attached
// for manual resolution.
type AmbiguousTimestampError struct {
	Conflicting []models.SubjectResult
}

func (e *AmbiguousTimestampError) Error() string {
	return fmt.Sprintf("cannot determine canonical result: %d candidates share the same updated_at with differing marks", len(e.Conflicting))
}
