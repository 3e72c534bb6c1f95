package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/matokeo-app/matokeo-api/internal/models"
	appErrors "github.com/matokeo-app/matokeo-api/pkg/errors"
)

type classCatalog interface {
	GetByID(ctx context.Context, id string) (*models.Class, error)
	List(ctx context.Context) ([]models.Class, error)
}

type examCatalog interface {
	GetByID(ctx context.Context, id string) (*models.Exam, error)
	List(ctx context.Context) ([]models.Exam, error)
}

type studentCatalog interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

// CatalogService serves the read-only class, student and exam lookups
// that the result entry and report screens are built on.
type CatalogService struct {
	classes  classCatalog
	exams    examCatalog
	students studentCatalog
	logger   *zap.Logger
}

// NewCatalogService constructs a CatalogService instance.
func NewCatalogService(classes classCatalog, exams examCatalog, students studentCatalog, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		classes:  classes,
		exams:    exams,
		students: students,
		logger:   logger,
	}
}

// ListClasses returns every class with its education scheme.
func (s *CatalogService) ListClasses(ctx context.Context) ([]models.Class, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		s.logger.Error("failed to list classes", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// ListExams returns exam sittings, most recent first.
func (s *CatalogService) ListExams(ctx context.Context) ([]models.Exam, error) {
	exams, err := s.exams.List(ctx)
	if err != nil {
		s.logger.Error("failed to list exams", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// ClassRoster returns a class together with its active students.
func (s *CatalogService) ClassRoster(ctx context.Context, classID string) (*models.ClassRoster, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		s.logger.Error("failed to load class", zap.String("class_id", classID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("failed to list class students", zap.String("class_id", classID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class students")
	}

	return &models.ClassRoster{Class: *class, Students: students}, nil
}

// GetExam returns one exam sitting.
func (s *CatalogService) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		s.logger.Error("failed to load exam", zap.String("exam_id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}
