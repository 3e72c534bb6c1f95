package grading

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

const (
	// OLevelBestCount is the number of subjects counted toward an
	// O-Level division.
	OLevelBestCount = 7
	// ALevelBestCount is the number of principal subjects counted
	// toward an A-Level division.
	ALevelBestCount = 3
)

// Selection is the outcome of best-subject selection.
type Selection struct {
	Chosen       []models.GradedResult
	MissingCount int
	FallbackUsed bool
	Warnings     []string
}

// SelectBest picks the scheme's best-N subject subset used for division
// computation. Equal-point entries keep their original input order, so
// repeated runs over the same input choose the same set. Subjects graded
// F with zero marks remain eligible: failing a subject is not the same as
// not having taken it.
func SelectBest(results []models.GradedResult, scheme models.EducationScheme) (Selection, error) {
	var sel Selection
	var pool []models.GradedResult
	var need int

	switch scheme {
	case models.SchemeOLevel:
		pool = append(pool, results...)
		need = OLevelBestCount
	case models.SchemeALevel:
		for _, r := range results {
			if r.IsPrincipal && !IsGeneralStudies(r.SubjectResult) {
				pool = append(pool, r)
			}
		}
		if len(pool) == 0 && len(results) > 0 {
			// Upstream data is missing the principal flag; fall back
			// to the best-scoring subjects overall rather than failing.
			pool = append(pool, results...)
			sel.FallbackUsed = true
			sel.Warnings = append(sel.Warnings, "no principal subjects flagged; falling back to best-scoring subjects overall")
		}
		need = ALevelBestCount
	default:
		return Selection{}, &UnknownSchemeError{Scheme: scheme}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Points < pool[j].Points
	})

	if len(pool) >= need {
		sel.Chosen = pool[:need]
	} else {
		sel.Chosen = pool
		sel.MissingCount = need - len(pool)
		sel.Warnings = append(sel.Warnings,
			fmt.Sprintf("division computed on an incomplete subject set: %d of %d subjects available", len(pool), need))
	}
	return sel, nil
}

// BestPoints sums the point values of the chosen subjects.
func (s Selection) BestPoints() int {
	total := 0
	for _, r := range s.Chosen {
		total += r.Points
	}
	return total
}

// IsGeneralStudies reports whether the subject is General Studies, which
// is excluded from A-Level division eligibility even when flagged
// principal. The match is by subject name or code, mirroring how the
// records identify the subject upstream.
func IsGeneralStudies(r models.SubjectResult) bool {
	if strings.EqualFold(strings.TrimSpace(r.SubjectCode), "GS") {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.SubjectName), "General Studies")
}
