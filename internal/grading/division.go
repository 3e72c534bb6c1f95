package grading

import "github.com/matokeo-app/matokeo-api/internal/models"

// Classify maps a best-subject point total to a division band. Point
// totals outside every defined range classify as Division 0; in
// particular a total of 0 (empty best-subject set) is never Division I.
func Classify(totalPoints int, scheme models.EducationScheme) (models.Division, error) {
	if totalPoints <= 0 {
		if !scheme.Valid() {
			return models.DivisionZero, &UnknownSchemeError{Scheme: scheme}
		}
		return models.DivisionZero, nil
	}

	switch scheme {
	case models.SchemeOLevel:
		switch {
		case totalPoints >= 7 && totalPoints <= 14:
			return models.DivisionI, nil
		case totalPoints >= 15 && totalPoints <= 21:
			return models.DivisionII, nil
		case totalPoints >= 22 && totalPoints <= 25:
			return models.DivisionIII, nil
		case totalPoints >= 26 && totalPoints <= 32:
			return models.DivisionIV, nil
		default:
			return models.DivisionZero, nil
		}
	case models.SchemeALevel:
		switch {
		case totalPoints >= 3 && totalPoints <= 9:
			return models.DivisionI, nil
		case totalPoints >= 10 && totalPoints <= 12:
			return models.DivisionII, nil
		case totalPoints >= 13 && totalPoints <= 17:
			return models.DivisionIII, nil
		case totalPoints >= 18 && totalPoints <= 19:
			return models.DivisionIV, nil
		case totalPoints >= 20 && totalPoints <= 21:
			return models.DivisionV, nil
		default:
			return models.DivisionZero, nil
		}
	default:
		return models.DivisionZero, &UnknownSchemeError{Scheme: scheme}
	}
}

// divisionOrder ranks divisions for class ordering: I best, then II-V,
// then 0, then no-result last.
func divisionOrder(d models.Division) int {
	switch d {
	case models.DivisionI:
		return 0
	case models.DivisionII:
		return 1
	case models.DivisionIII:
		return 2
	case models.DivisionIV:
		return 3
	case models.DivisionV:
		return 4
	case models.DivisionZero:
		return 5
	default:
		return 6
	}
}
