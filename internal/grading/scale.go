package grading

import (
	"math"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

// GradeAndPoints maps raw marks to the letter grade and point value of the
// scheme. Lower points denote better grades. Marks must lie in [0,100];
// anything else, including NaN, yields an InvalidMarksError.
func GradeAndPoints(marks float64, scheme models.EducationScheme) (models.Grade, int, error) {
	if math.IsNaN(marks) || marks < 0 || marks > 100 {
		return "", 0, &InvalidMarksError{Marks: marks}
	}

	switch scheme {
	case models.SchemeOLevel:
		switch {
		case marks >= 75:
			return models.GradeA, 1, nil
		case marks >= 65:
			return models.GradeB, 2, nil
		case marks >= 50:
			return models.GradeC, 3, nil
		case marks >= 30:
			return models.GradeD, 4, nil
		default:
			return models.GradeF, 5, nil
		}
	case models.SchemeALevel:
		switch {
		case marks >= 80:
			return models.GradeA, 1, nil
		case marks >= 70:
			return models.GradeB, 2, nil
		case marks >= 60:
			return models.GradeC, 3, nil
		case marks >= 50:
			return models.GradeD, 4, nil
		case marks >= 40:
			return models.GradeE, 5, nil
		case marks >= 35:
			return models.GradeS, 6, nil
		default:
			return models.GradeF, 7, nil
		}
	default:
		return "", 0, &UnknownSchemeError{Scheme: scheme}
	}
}

// Remark returns the human label for a grade under the scheme. The label
// set is scheme-dependent because the O-Level alphabet has no E or S.
func Remark(grade models.Grade, scheme models.EducationScheme) string {
	switch grade {
	case models.GradeA:
		return "Excellent"
	case models.GradeB:
		return "Very Good"
	case models.GradeC:
		return "Good"
	case models.GradeD:
		return "Satisfactory"
	case models.GradeE:
		if scheme == models.SchemeALevel {
			return "Pass"
		}
	case models.GradeS:
		if scheme == models.SchemeALevel {
			return "Subsidiary Pass"
		}
	case models.GradeF:
		return "Fail"
	}
	return ""
}

// Graded derives a GradedResult from a SubjectResult under the scheme.
func Graded(result models.SubjectResult, scheme models.EducationScheme) (models.GradedResult, error) {
	grade, points, err := GradeAndPoints(result.MarksObtained, scheme)
	if err != nil {
		return models.GradedResult{}, err
	}
	return models.GradedResult{
		SubjectResult: result,
		Grade:         grade,
		Points:        points,
		Remark:        Remark(grade, scheme),
	}, nil
}
