package grading

import (
	"math"
	"sort"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

// AggregateStudent grades every input result, totals marks, and
// classifies the division from the best-subject subset. Rank is left
// unset; it is assigned by AggregateClass. A subject with invalid marks
// degrades only its own contribution and is reported in SubjectErrors;
// an unknown scheme aborts the whole call.
func AggregateStudent(results []models.SubjectResult, scheme models.EducationScheme) (models.StudentReportRow, error) {
	if !scheme.Valid() {
		return models.StudentReportRow{}, &UnknownSchemeError{Scheme: scheme}
	}

	row := models.StudentReportRow{Distribution: models.GradeDistribution{}}
	if len(results) > 0 {
		row.StudentID = results[0].StudentID
	}

	graded := make([]models.GradedResult, 0, len(results))
	for _, r := range results {
		g, err := Graded(r, scheme)
		if err != nil {
			row.SubjectErrors = append(row.SubjectErrors, models.SubjectError{
				SubjectID: r.SubjectID,
				Reason:    err.Error(),
			})
			continue
		}
		graded = append(graded, g)
		row.TotalMarks += g.MarksObtained
		row.Distribution[g.Grade]++
	}
	row.SubjectResults = graded

	if len(graded) > 0 {
		row.AverageMarks = round1(row.TotalMarks / float64(len(graded)))
	}

	sel, err := SelectBest(graded, scheme)
	if err != nil {
		return models.StudentReportRow{}, err
	}
	bestPoints := sel.BestPoints()

	division := models.DivisionNone
	if len(graded) > 0 {
		division, err = Classify(bestPoints, scheme)
		if err != nil {
			return models.StudentReportRow{}, err
		}
	}

	row.DivisionResult = models.DivisionResult{
		BestSubjects:        sel.Chosen,
		BestPoints:          bestPoints,
		Division:            division,
		MissingSubjectCount: sel.MissingCount,
		Warnings:            sel.Warnings,
	}
	return row, nil
}

// AggregateClass aggregates every student's results and assigns ranks.
// Ordering: better division first, then ascending best points (fewer
// points denote better grades), then descending average marks. Students
// tied on all three keys share the same rank number and the next rank is
// skipped (competition ranking).
func AggregateClass(studentsResults [][]models.SubjectResult, scheme models.EducationScheme) ([]models.StudentReportRow, error) {
	rows := make([]models.StudentReportRow, 0, len(studentsResults))
	for _, results := range studentsResults {
		row, err := AggregateStudent(results, scheme)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := divisionOrder(rows[i].DivisionResult.Division), divisionOrder(rows[j].DivisionResult.Division)
		if di != dj {
			return di < dj
		}
		if rows[i].DivisionResult.BestPoints != rows[j].DivisionResult.BestPoints {
			return rows[i].DivisionResult.BestPoints < rows[j].DivisionResult.BestPoints
		}
		return rows[i].AverageMarks > rows[j].AverageMarks
	})

	for i := range rows {
		if i > 0 && sameStanding(rows[i], rows[i-1]) {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
	return rows, nil
}

func sameStanding(a, b models.StudentReportRow) bool {
	return a.DivisionResult.Division == b.DivisionResult.Division &&
		a.DivisionResult.BestPoints == b.DivisionResult.BestPoints &&
		a.AverageMarks == b.AverageMarks
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
