package grading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

func candidate(id string, marks float64, updatedAt time.Time) models.SubjectResult {
	return models.SubjectResult{
		ID:            id,
		StudentID:     "stu-1",
		SubjectID:     "math",
		ExamID:        "exam-1",
		MarksObtained: marks,
		UpdatedAt:     updatedAt,
	}
}

func TestDedupeLatestWins(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	resolution, err := Dedupe([]models.SubjectResult{
		candidate("old", 55, base),
		candidate("new", 72, base.Add(time.Hour)),
		candidate("older", 40, base.Add(-time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, "new", resolution.Canonical.ID)
	require.Len(t, resolution.Discarded, 2)
	for _, d := range resolution.Discarded {
		assert.False(t, d.PossibleLegitimateDuplicate)
	}
}

func TestDedupeIdenticalMarksFlagged(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	resolution, err := Dedupe([]models.SubjectResult{
		candidate("a", 72, base),
		candidate("b", 72, base.Add(time.Minute)),
	})
	require.NoError(t, err)
	assert.Equal(t, "b", resolution.Canonical.ID)
	require.Len(t, resolution.Discarded, 1)
	assert.True(t, resolution.Discarded[0].PossibleLegitimateDuplicate)
}

func TestDedupeAmbiguousTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := Dedupe([]models.SubjectResult{
		candidate("a", 72, ts),
		candidate("b", 55, ts),
	})
	var ambiguous *AmbiguousTimestampError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Conflicting, 2)
}

// Equal timestamps with identical marks resolve to the first candidate
// in input order instead of failing.
func TestDedupeEqualTimestampIdenticalMarks(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	resolution, err := Dedupe([]models.SubjectResult{
		candidate("a", 72, ts),
		candidate("b", 72, ts),
	})
	require.NoError(t, err)
	assert.Equal(t, "a", resolution.Canonical.ID)
	require.Len(t, resolution.Discarded, 1)
	assert.True(t, resolution.Discarded[0].PossibleLegitimateDuplicate)
}

func TestDedupeIdempotent(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first, err := Dedupe([]models.SubjectResult{
		candidate("a", 55, base),
		candidate("b", 72, base.Add(time.Hour)),
	})
	require.NoError(t, err)

	second, err := Dedupe([]models.SubjectResult{first.Canonical})
	require.NoError(t, err)
	assert.Equal(t, first.Canonical, second.Canonical)
	assert.Empty(t, second.Discarded)
}

func TestDedupeNoCandidates(t *testing.T) {
	_, err := Dedupe(nil)
	require.Error(t, err)
}
