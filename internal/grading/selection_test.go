package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

func gradedSubject(id, name string, marks float64, principal bool, scheme models.EducationScheme) models.GradedResult {
	g, err := Graded(models.SubjectResult{
		ID:            "res-" + id,
		SubjectID:     id,
		SubjectName:   name,
		MarksObtained: marks,
		IsPrincipal:   principal,
	}, scheme)
	if err != nil {
		panic(err)
	}
	return g
}

func TestSelectBestOLevelTakesSeven(t *testing.T) {
	var results []models.GradedResult
	marks := []float64{90, 82, 77, 68, 55, 51, 40, 33, 20}
	for i, m := range marks {
		results = append(results, gradedSubject(string(rune('a'+i)), "Subject", m, false, models.SchemeOLevel))
	}

	sel, err := SelectBest(results, models.SchemeOLevel)
	require.NoError(t, err)
	assert.Len(t, sel.Chosen, 7)
	assert.Zero(t, sel.MissingCount)
	assert.Empty(t, sel.Warnings)
	// Best seven exclude the two weakest entries.
	for _, chosen := range sel.Chosen {
		assert.NotContains(t, []string{"h", "i"}, chosen.SubjectID)
	}
}

func TestSelectBestOLevelIncompleteSet(t *testing.T) {
	var results []models.GradedResult
	for i := 0; i < 5; i++ {
		results = append(results, gradedSubject(string(rune('a'+i)), "Subject", 80, false, models.SchemeOLevel))
	}

	sel, err := SelectBest(results, models.SchemeOLevel)
	require.NoError(t, err)
	assert.Len(t, sel.Chosen, 5)
	assert.Equal(t, 2, sel.MissingCount)
	require.Len(t, sel.Warnings, 1)
	assert.Contains(t, sel.Warnings[0], "incomplete subject set")
}

func TestSelectBestALevelPrincipalOnly(t *testing.T) {
	results := []models.GradedResult{
		gradedSubject("phy", "Physics", 85, true, models.SchemeALevel),   // 1 point
		gradedSubject("chem", "Chemistry", 72, true, models.SchemeALevel), // 2 points
		gradedSubject("math", "Mathematics", 64, true, models.SchemeALevel), // 3 points
		gradedSubject("bio", "Biology", 30, true, models.SchemeALevel),   // 7 points
		gradedSubject("bam", "Basic Applied Mathematics", 90, false, models.SchemeALevel),
	}

	sel, err := SelectBest(results, models.SchemeALevel)
	require.NoError(t, err)
	require.Len(t, sel.Chosen, 3)
	assert.Equal(t, "phy", sel.Chosen[0].SubjectID)
	assert.Equal(t, "chem", sel.Chosen[1].SubjectID)
	assert.Equal(t, "math", sel.Chosen[2].SubjectID)
	assert.Equal(t, 6, sel.BestPoints())
	assert.False(t, sel.FallbackUsed)
}

func TestSelectBestALevelExcludesGeneralStudies(t *testing.T) {
	results := []models.GradedResult{
		gradedSubject("gs", "General Studies", 95, true, models.SchemeALevel),
		gradedSubject("phy", "Physics", 85, true, models.SchemeALevel),
		gradedSubject("chem", "Chemistry", 72, true, models.SchemeALevel),
		gradedSubject("math", "Mathematics", 64, true, models.SchemeALevel),
		gradedSubject("bio", "Biology", 55, true, models.SchemeALevel),
	}

	sel, err := SelectBest(results, models.SchemeALevel)
	require.NoError(t, err)
	for _, chosen := range sel.Chosen {
		assert.NotEqual(t, "gs", chosen.SubjectID)
	}
}

func TestSelectBestALevelFallbackWithoutPrincipalFlags(t *testing.T) {
	results := []models.GradedResult{
		gradedSubject("phy", "Physics", 85, false, models.SchemeALevel),
		gradedSubject("chem", "Chemistry", 72, false, models.SchemeALevel),
		gradedSubject("math", "Mathematics", 64, false, models.SchemeALevel),
		gradedSubject("bio", "Biology", 30, false, models.SchemeALevel),
	}

	sel, err := SelectBest(results, models.SchemeALevel)
	require.NoError(t, err)
	assert.True(t, sel.FallbackUsed)
	require.Len(t, sel.Chosen, 3)
	assert.Equal(t, 6, sel.BestPoints())
	require.NotEmpty(t, sel.Warnings)
	assert.Contains(t, sel.Warnings[0], "no principal subjects flagged")
}

// Equal-point entries keep their input order.
func TestSelectBestStableTieBreak(t *testing.T) {
	results := []models.GradedResult{
		gradedSubject("first", "History", 68, false, models.SchemeOLevel),
		gradedSubject("second", "Geography", 66, false, models.SchemeOLevel),
		gradedSubject("third", "Civics", 67, false, models.SchemeOLevel),
	}

	sel, err := SelectBest(results, models.SchemeOLevel)
	require.NoError(t, err)
	require.Len(t, sel.Chosen, 3)
	assert.Equal(t, "first", sel.Chosen[0].SubjectID)
	assert.Equal(t, "second", sel.Chosen[1].SubjectID)
	assert.Equal(t, "third", sel.Chosen[2].SubjectID)
}

func TestSelectBestZeroMarkSubjectsEligible(t *testing.T) {
	results := []models.GradedResult{
		gradedSubject("math", "Mathematics", 0, false, models.SchemeOLevel),
		gradedSubject("eng", "English", 80, false, models.SchemeOLevel),
	}

	sel, err := SelectBest(results, models.SchemeOLevel)
	require.NoError(t, err)
	assert.Len(t, sel.Chosen, 2)
}

func TestSelectBestIdempotent(t *testing.T) {
	var results []models.GradedResult
	marks := []float64{90, 82, 77, 68, 55, 51, 40, 33}
	for i, m := range marks {
		results = append(results, gradedSubject(string(rune('a'+i)), "Subject", m, false, models.SchemeOLevel))
	}

	first, err := SelectBest(results, models.SchemeOLevel)
	require.NoError(t, err)
	second, err := SelectBest(first.Chosen, models.SchemeOLevel)
	require.NoError(t, err)
	assert.Equal(t, first.Chosen, second.Chosen)
}

func TestIsGeneralStudies(t *testing.T) {
	assert.True(t, IsGeneralStudies(models.SubjectResult{SubjectName: "General Studies"}))
	assert.True(t, IsGeneralStudies(models.SubjectResult{SubjectName: "general studies"}))
	assert.True(t, IsGeneralStudies(models.SubjectResult{SubjectCode: "GS"}))
	assert.False(t, IsGeneralStudies(models.SubjectResult{SubjectName: "Geography", SubjectCode: "GEO"}))
}
