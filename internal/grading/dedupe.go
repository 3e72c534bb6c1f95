package grading

import (
	"errors"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

// Dedupe resolves exactly one canonical record out of conflicting result
// rows recorded for the same student + subject + exam. The candidate with
// the latest updated_at wins. Discarded rows whose marks match the
// canonical record are flagged as possible legitimate duplicates but
// still discarded. When two or more candidates tie exactly on updated_at
// and disagree on marks, an AmbiguousTimestampError carrying the tied
// records is returned; no canonical record is ever chosen silently.
func Dedupe(candidates []models.SubjectResult) (models.DuplicateResolution, error) {
	if len(candidates) == 0 {
		return models.DuplicateResolution{}, errors.New("dedupe: no candidates")
	}
	if len(candidates) == 1 {
		return models.DuplicateResolution{Canonical: candidates[0]}, nil
	}

	latest := candidates[0]
	for _, c := range candidates[1:] {
		if c.UpdatedAt.After(latest.UpdatedAt) {
			latest = c
		}
	}

	var tied []models.SubjectResult
	for _, c := range candidates {
		if c.UpdatedAt.Equal(latest.UpdatedAt) {
			tied = append(tied, c)
		}
	}
	if len(tied) > 1 {
		for _, c := range tied {
			if c.MarksObtained != tied[0].MarksObtained {
				return models.DuplicateResolution{}, &AmbiguousTimestampError{Conflicting: tied}
			}
		}
	}

	// First tied candidate in input order stays canonical so repeated
	// runs resolve identically.
	canonical := tied[0]
	resolution := models.DuplicateResolution{Canonical: canonical}
	for _, c := range candidates {
		if c.ID == canonical.ID {
			continue
		}
		resolution.Discarded = append(resolution.Discarded, models.DiscardedDuplicate{
			SubjectResult:               c,
			PossibleLegitimateDuplicate: c.MarksObtained == canonical.MarksObtained,
		})
	}
	return resolution, nil
}
