package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matokeo-app/matokeo-api/internal/dto"
	"github.com/matokeo-app/matokeo-api/internal/grading"
	"github.com/matokeo-app/matokeo-api/internal/models"
	appErrors "github.com/matokeo-app/matokeo-api/pkg/errors"
)

type resultStore interface {
	Upsert(ctx context.Context, result *models.SubjectResult) error
	List(ctx context.Context, filter models.ResultFilter) ([]models.SubjectResult, error)
	FindDuplicateGroups(ctx context.Context, examID string) ([]models.DuplicateGroup, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// ResultService covers mark entry and duplicate maintenance.
type ResultService struct {
	repo      resultStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResultService constructs a ResultService instance.
func NewResultService(repo resultStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ResultService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// EnterMarks records one mark entry, rejecting marks outside [0, 100].
func (s *ResultService) EnterMarks(ctx context.Context, req dto.EnterMarksRequest) (*models.SubjectResult, error) {
	if err := s.validateEntry(req); err != nil {
		return nil, err
	}

	result := &models.SubjectResult{
		StudentID:     req.StudentID,
		SubjectID:     req.SubjectID,
		ExamID:        req.ExamID,
		MarksObtained: req.Marks,
	}
	if err := s.repo.Upsert(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store result")
	}

	s.invalidateExam(ctx, req.ExamID)
	return result, nil
}

// BulkEnterMarks records a batch of entries. Invalid rows are rejected
// individually; valid rows in the same batch are still stored.
func (s *ResultService) BulkEnterMarks(ctx context.Context, req dto.BulkEnterMarksRequest) (*dto.BulkEnterMarksResponse, error) {
	if len(req.Results) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "results must not be empty")
	}

	resp := &dto.BulkEnterMarksResponse{}
	touchedExams := map[string]struct{}{}

	for i, entry := range req.Results {
		if err := s.validateEntry(entry); err != nil {
			resp.Rejected++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %v", i, err))
			continue
		}
		result := &models.SubjectResult{
			StudentID:     entry.StudentID,
			SubjectID:     entry.SubjectID,
			ExamID:        entry.ExamID,
			MarksObtained: entry.Marks,
		}
		if err := s.repo.Upsert(ctx, result); err != nil {
			resp.Rejected++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: store failed", i))
			s.logger.Warn("bulk mark entry failed", zap.Int("row", i), zap.Error(err))
			continue
		}
		resp.Accepted++
		touchedExams[entry.ExamID] = struct{}{}
	}

	for examID := range touchedExams {
		s.invalidateExam(ctx, examID)
	}
	return resp, nil
}

// ListResults returns stored results matching the filter.
func (s *ResultService) ListResults(ctx context.Context, filter models.ResultFilter) ([]models.SubjectResult, error) {
	results, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}
	return results, nil
}

// DetectDuplicates scans an exam for conflicting result rows and reports
// how each group would resolve. Groups tied on updated_at with differing
// marks are listed as ambiguous and left untouched.
func (s *ResultService) DetectDuplicates(ctx context.Context, examID string) (*models.DuplicateReport, error) {
	if examID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "examId is required")
	}

	groups, err := s.repo.FindDuplicateGroups(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan duplicates")
	}

	report := &models.DuplicateReport{ExamID: examID}
	for _, group := range groups {
		resolution, err := grading.Dedupe(group.Candidates)
		if err != nil {
			var ambiguous *grading.AmbiguousTimestampError
			if errors.As(err, &ambiguous) {
				report.Ambiguous = append(report.Ambiguous, models.AmbiguousGroup{
					DuplicateGroup: group,
					Reason:         ambiguous.Error(),
				})
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve duplicate group")
		}
		report.Resolved = append(report.Resolved, resolution)
	}
	return report, nil
}

// ResolveDuplicates applies the resolution computed by DetectDuplicates,
// deleting discarded rows. Ambiguous groups are never auto-resolved; they
// are returned for manual intervention.
func (s *ResultService) ResolveDuplicates(ctx context.Context, req dto.ResolveDuplicatesRequest) (*models.DuplicateCleanup, error) {
	report, err := s.DetectDuplicates(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	cleanup := &models.DuplicateCleanup{
		ExamID:        req.ExamID,
		AmbiguousLeft: report.Ambiguous,
		CanonicalKept: len(report.Resolved),
	}
	for _, resolution := range report.Resolved {
		for _, discarded := range resolution.Discarded {
			cleanup.RemovedIDs = append(cleanup.RemovedIDs, discarded.ID)
			if discarded.PossibleLegitimateDuplicate {
				cleanup.FlaggedCount++
			}
		}
	}
	cleanup.RemovedCount = len(cleanup.RemovedIDs)

	if req.DryRun || cleanup.RemovedCount == 0 {
		return cleanup, nil
	}

	if err := s.repo.DeleteByIDs(ctx, cleanup.RemovedIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete duplicate rows")
	}

	s.logger.Info("duplicate rows removed",
		zap.String("exam_id", req.ExamID),
		zap.Int("removed", cleanup.RemovedCount),
		zap.Int("flagged", cleanup.FlaggedCount),
		zap.Int("ambiguous_left", len(cleanup.AmbiguousLeft)),
	)
	s.invalidateExam(ctx, req.ExamID)
	return cleanup, nil
}

func (s *ResultService) validateEntry(req dto.EnterMarksRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark entry")
	}
	// validator min/max do not reject NaN
	if math.IsNaN(req.Marks) || req.Marks < 0 || req.Marks > 100 {
		return appErrors.Clone(appErrors.ErrInvalidMarks, fmt.Sprintf("marks %v outside the valid range [0, 100]", req.Marks))
	}
	return nil
}

func (s *ResultService) invalidateExam(ctx context.Context, examID string) {
	if err := s.cache.Invalidate(ctx, "reports:exam:"+examID+":*"); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.String("exam_id", examID), zap.Error(err))
	}
}
