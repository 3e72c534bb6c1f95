package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matokeo-app/matokeo-api/internal/models"
	appErrors "github.com/matokeo-app/matokeo-api/pkg/errors"
)

type resultStoreStub struct {
	byClass   map[string][]models.SubjectResult
	byStudent map[string][]models.SubjectResult
}

func (s *resultStoreStub) ListByClassExam(ctx context.Context, classID, examID string) ([]models.SubjectResult, error) {
	return s.byClass[classID], nil
}

func (s *resultStoreStub) ListByStudentExam(ctx context.Context, studentID, examID string) ([]models.SubjectResult, error) {
	return s.byStudent[studentID], nil
}

type classStoreStub struct {
	classes map[string]*models.Class
}

func (s *classStoreStub) GetByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := s.classes[id]; ok {
		return class, nil
	}
	return nil, errNotFoundRow
}

type studentStoreStub struct {
	students map[string]*models.Student
	byClass  map[string][]models.Student
}

func (s *studentStoreStub) GetByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := s.students[id]; ok {
		return student, nil
	}
	return nil, errNotFoundRow
}

func (s *studentStoreStub) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	return s.byClass[classID], nil
}

var errNotFoundRow = assert.AnError

func subjectResult(id, studentID, subjectID string, marks float64, updated time.Time) models.SubjectResult {
	return models.SubjectResult{
		ID:            id,
		StudentID:     studentID,
		SubjectID:     subjectID,
		SubjectCode:   subjectID,
		SubjectName:   subjectID,
		ExamID:        "exam-1",
		MarksObtained: marks,
		UpdatedAt:     updated,
	}
}

func newReportServiceForTest(results *resultStoreStub, classes *classStoreStub, students *studentStoreStub) *ReportService {
	return NewReportService(results, classes, students, nil, nil, zap.NewNop())
}

func TestStudentReportUsesClassScheme(t *testing.T) {
	now := time.Now()
	results := &resultStoreStub{byStudent: map[string][]models.SubjectResult{
		"stu-1": {
			subjectResult("r1", "stu-1", "MATH", 82, now),
			subjectResult("r2", "stu-1", "ENG", 68, now),
		},
	}}
	classes := &classStoreStub{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Name: "Form IV A", Scheme: models.SchemeOLevel},
	}}
	students := &studentStoreStub{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", FullName: "Asha Mushi", ClassID: "class-1"},
	}}

	svc := newReportServiceForTest(results, classes, students)
	report, err := svc.StudentReport(context.Background(), "stu-1", "exam-1")
	require.NoError(t, err)

	assert.Equal(t, models.SchemeOLevel, report.Scheme)
	assert.Equal(t, "Asha Mushi", report.Row.StudentName)
	require.Len(t, report.Row.SubjectResults, 2)
	assert.Equal(t, models.GradeA, report.Row.SubjectResults[0].Grade)
	assert.Equal(t, models.GradeB, report.Row.SubjectResults[1].Grade)
	assert.Equal(t, 150.0, report.Row.TotalMarks)
	assert.Equal(t, 75.0, report.Row.AverageMarks)
}

func TestStudentReportDeduplicatesBeforeGrading(t *testing.T) {
	base := time.Now()
	results := &resultStoreStub{byStudent: map[string][]models.SubjectResult{
		"stu-1": {
			subjectResult("r1", "stu-1", "MATH", 40, base),
			subjectResult("r2", "stu-1", "MATH", 85, base.Add(time.Hour)),
		},
	}}
	classes := &classStoreStub{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Scheme: models.SchemeOLevel},
	}}
	students := &studentStoreStub{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", ClassID: "class-1"},
	}}

	svc := newReportServiceForTest(results, classes, students)
	report, err := svc.StudentReport(context.Background(), "stu-1", "exam-1")
	require.NoError(t, err)

	require.Len(t, report.Row.SubjectResults, 1)
	assert.Equal(t, 85.0, report.Row.SubjectResults[0].MarksObtained)
	assert.Equal(t, models.GradeA, report.Row.SubjectResults[0].Grade)
}

func TestStudentReportAmbiguousDuplicateFails(t *testing.T) {
	base := time.Now()
	results := &resultStoreStub{byStudent: map[string][]models.SubjectResult{
		"stu-1": {
			subjectResult("r1", "stu-1", "MATH", 40, base),
			subjectResult("r2", "stu-1", "MATH", 85, base),
		},
	}}
	classes := &classStoreStub{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Scheme: models.SchemeOLevel},
	}}
	students := &studentStoreStub{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", ClassID: "class-1"},
	}}

	svc := newReportServiceForTest(results, classes, students)
	_, err := svc.StudentReport(context.Background(), "stu-1", "exam-1")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAmbiguousTimestamp.Code, appErr.Code)
}

func TestClassReportRanksStudents(t *testing.T) {
	now := time.Now()
	subjects := []string{"MATH", "ENG", "PHY", "CHE", "BIO", "GEO", "HIS"}

	buildStudent := func(studentID string, marks float64) []models.SubjectResult {
		rows := make([]models.SubjectResult, 0, len(subjects))
		for i, subject := range subjects {
			rows = append(rows, subjectResult(studentID+subject, studentID, subject, marks, now.Add(time.Duration(i))))
		}
		return rows
	}

	classResults := append(buildStudent("stu-low", 40), buildStudent("stu-high", 80)...)
	results := &resultStoreStub{byClass: map[string][]models.SubjectResult{"class-1": classResults}}
	classes := &classStoreStub{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Name: "Form IV A", Scheme: models.SchemeOLevel},
	}}
	students := &studentStoreStub{
		byClass: map[string][]models.Student{"class-1": {
			{ID: "stu-low", FullName: "Low", ClassID: "class-1"},
			{ID: "stu-high", FullName: "High", ClassID: "class-1"},
		}},
	}

	svc := newReportServiceForTest(results, classes, students)
	report, err := svc.ClassReport(context.Background(), "class-1", "exam-1")
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "stu-high", report.Rows[0].StudentID)
	assert.Equal(t, 1, report.Rows[0].Rank)
	assert.Equal(t, models.DivisionI, report.Rows[0].DivisionResult.Division)
	assert.Equal(t, "stu-low", report.Rows[1].StudentID)
	assert.Equal(t, 2, report.Rows[1].Rank)
}

func TestClassReportIncludesStudentsWithoutResults(t *testing.T) {
	now := time.Now()
	var classResults []models.SubjectResult
	for i, subject := range []string{"MATH", "ENG", "PHY", "CHE", "BIO", "GEO", "HIS"} {
		classResults = append(classResults, subjectResult("r"+subject, "stu-1", subject, 70, now.Add(time.Duration(i))))
	}

	results := &resultStoreStub{byClass: map[string][]models.SubjectResult{"class-1": classResults}}
	classes := &classStoreStub{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Scheme: models.SchemeOLevel},
	}}
	students := &studentStoreStub{
		byClass: map[string][]models.Student{"class-1": {
			{ID: "stu-1", FullName: "Sat Exams", ClassID: "class-1"},
			{ID: "stu-2", FullName: "No Results", ClassID: "class-1"},
		}},
	}

	svc := newReportServiceForTest(results, classes, students)
	report, err := svc.ClassReport(context.Background(), "class-1", "exam-1")
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "stu-1", report.Rows[0].StudentID)
	assert.Equal(t, "stu-2", report.Rows[1].StudentID)
	assert.Equal(t, "No Results", report.Rows[1].StudentName)
	assert.Equal(t, models.DivisionNone, report.Rows[1].DivisionResult.Division)
	assert.Equal(t, 2, report.Rows[1].Rank)
}
