package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matokeo-app/matokeo-api/internal/grading"
	"github.com/matokeo-app/matokeo-api/internal/models"
	appErrors "github.com/matokeo-app/matokeo-api/pkg/errors"
)

type reportResultStore interface {
	ListByClassExam(ctx context.Context, classID, examID string) ([]models.SubjectResult, error)
	ListByStudentExam(ctx context.Context, studentID, examID string) ([]models.SubjectResult, error)
}

type classStore interface {
	GetByID(ctx context.Context, id string) (*models.Class, error)
}

type studentStore interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

// ReportService computes graded student and class reports. The grading
// scheme always comes from the class record, never from result data.
type ReportService struct {
	results  reportResultStore
	classes  classStore
	students studentStore
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(results reportResultStore, classes classStore, students studentStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		results:  results,
		classes:  classes,
		students: students,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// StudentReport aggregates one student's results for an exam.
func (s *ReportService) StudentReport(ctx context.Context, studentID, examID string) (*models.StudentReport, error) {
	start := time.Now()

	cacheKey := fmt.Sprintf("reports:exam:%s:student:%s", examID, studentID)
	var cached models.StudentReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	class, err := s.classes.GetByID(ctx, student.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	raw, err := s.results.ListByStudentExam(ctx, studentID, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}

	deduped, err := dedupeResults(raw)
	if err != nil {
		return nil, translateGradingError(err)
	}

	row, err := grading.AggregateStudent(deduped, class.Scheme)
	if err != nil {
		return nil, translateGradingError(err)
	}
	row.StudentID = student.ID
	row.StudentName = student.FullName

	report := &models.StudentReport{
		StudentID:   student.ID,
		ExamID:      examID,
		Scheme:      class.Scheme,
		Row:         row,
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.cache.Set(ctx, cacheKey, report, 0); err != nil {
		s.logger.Warn("failed to cache student report", zap.String("key", cacheKey), zap.Error(err))
	}
	s.metrics.ObserveReportGeneration("student", time.Since(start))
	return report, nil
}

// ClassReport aggregates and ranks every student of a class for an exam.
// Students without any results still appear, ranked after everyone with
// a division.
func (s *ReportService) ClassReport(ctx context.Context, classID, examID string) (*models.ClassReport, error) {
	start := time.Now()

	cacheKey := fmt.Sprintf("reports:exam:%s:class:%s", examID, classID)
	var cached models.ClassReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	raw, err := s.results.ListByClassExam(ctx, classID, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}

	byStudent := make(map[string][]models.SubjectResult, len(students))
	for _, r := range raw {
		byStudent[r.StudentID] = append(byStudent[r.StudentID], r)
	}

	names := make(map[string]string, len(students))
	perStudent := make([][]models.SubjectResult, 0, len(students))
	for _, student := range students {
		names[student.ID] = student.FullName
		deduped, err := dedupeResults(byStudent[student.ID])
		if err != nil {
			return nil, translateGradingError(err)
		}
		// students without results still get an (empty) slot so they
		// appear in the ranked report
		perStudent = append(perStudent, deduped)
	}

	rows, err := grading.AggregateClass(perStudent, class.Scheme)
	if err != nil {
		return nil, translateGradingError(err)
	}

	// Rows for students without results come back with an empty student
	// ID; match them back by position of the remaining unnamed students.
	assignStudentIdentities(rows, students)
	for i := range rows {
		if name, ok := names[rows[i].StudentID]; ok {
			rows[i].StudentName = name
		}
	}

	report := &models.ClassReport{
		ClassID:     class.ID,
		ClassName:   class.Name,
		ExamID:      examID,
		Scheme:      class.Scheme,
		Rows:        rows,
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.cache.Set(ctx, cacheKey, report, 0); err != nil {
		s.logger.Warn("failed to cache class report", zap.String("key", cacheKey), zap.Error(err))
	}
	s.metrics.ObserveReportGeneration("class", time.Since(start))
	return report, nil
}

// dedupeResults collapses multiple stored rows per (student, subject)
// to the canonical record before grading.
func dedupeResults(results []models.SubjectResult) ([]models.SubjectResult, error) {
	type key struct {
		studentID string
		subjectID string
	}

	order := make([]key, 0, len(results))
	groups := make(map[key][]models.SubjectResult, len(results))
	for _, r := range results {
		k := key{studentID: r.StudentID, subjectID: r.SubjectID}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	deduped := make([]models.SubjectResult, 0, len(order))
	for _, k := range order {
		resolution, err := grading.Dedupe(groups[k])
		if err != nil {
			return nil, err
		}
		deduped = append(deduped, resolution.Canonical)
	}
	return deduped, nil
}

// assignStudentIdentities fills in student IDs on rows produced from
// empty result sets, which carry no identity of their own.
func assignStudentIdentities(rows []models.StudentReportRow, students []models.Student) {
	claimed := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.StudentID != "" {
			claimed[row.StudentID] = true
		}
	}
	next := 0
	for i := range rows {
		if rows[i].StudentID != "" {
			continue
		}
		for next < len(students) && claimed[students[next].ID] {
			next++
		}
		if next >= len(students) {
			return
		}
		rows[i].StudentID = students[next].ID
		claimed[students[next].ID] = true
	}
}

// translateGradingError maps grading package errors to API errors.
func translateGradingError(err error) error {
	var invalidMarks *grading.InvalidMarksError
	if errors.As(err, &invalidMarks) {
		return appErrors.Wrap(err, appErrors.ErrInvalidMarks.Code, appErrors.ErrInvalidMarks.Status, err.Error())
	}
	var unknownScheme *grading.UnknownSchemeError
	if errors.As(err, &unknownScheme) {
		return appErrors.Wrap(err, appErrors.ErrUnknownScheme.Code, appErrors.ErrUnknownScheme.Status, err.Error())
	}
	var ambiguous *grading.AmbiguousTimestampError
	if errors.As(err, &ambiguous) {
		return appErrors.Wrap(err, appErrors.ErrAmbiguousTimestamp.Code, appErrors.ErrAmbiguousTimestamp.Status, err.Error())
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "report aggregation failed")
}
