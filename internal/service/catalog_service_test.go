package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matokeo-app/matokeo-api/internal/models"
	appErrors "github.com/matokeo-app/matokeo-api/pkg/errors"
)

type classCatalogStub struct {
	classes []models.Class
}

func (s *classCatalogStub) GetByID(_ context.Context, id string) (*models.Class, error) {
	for i := range s.classes {
		if s.classes[i].ID == id {
			return &s.classes[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *classCatalogStub) List(_ context.Context) ([]models.Class, error) {
	return s.classes, nil
}

type examCatalogStub struct {
	exams []models.Exam
}

func (s *examCatalogStub) GetByID(_ context.Context, id string) (*models.Exam, error) {
	for i := range s.exams {
		if s.exams[i].ID == id {
			return &s.exams[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *examCatalogStub) List(_ context.Context) ([]models.Exam, error) {
	return s.exams, nil
}

type studentCatalogStub struct {
	students map[string][]models.Student
}

func (s *studentCatalogStub) ListByClass(_ context.Context, classID string) ([]models.Student, error) {
	return s.students[classID], nil
}

func TestClassRosterLoadsClassAndStudents(t *testing.T) {
	svc := NewCatalogService(
		&classCatalogStub{classes: []models.Class{{ID: "class-1", Name: "Form 4A", Scheme: models.SchemeOLevel}}},
		&examCatalogStub{},
		&studentCatalogStub{students: map[string][]models.Student{
			"class-1": {{ID: "stu-1", FullName: "Amina Juma"}, {ID: "stu-2", FullName: "Baraka Mushi"}},
		}},
		nil,
	)

	roster, err := svc.ClassRoster(context.Background(), "class-1")

	require.NoError(t, err)
	assert.Equal(t, "Form 4A", roster.Class.Name)
	assert.Equal(t, models.SchemeOLevel, roster.Class.Scheme)
	require.Len(t, roster.Students, 2)
	assert.Equal(t, "stu-1", roster.Students[0].ID)
}

func TestClassRosterUnknownClass(t *testing.T) {
	svc := NewCatalogService(&classCatalogStub{}, &examCatalogStub{}, &studentCatalogStub{}, nil)

	_, err := svc.ClassRoster(context.Background(), "missing")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGetExamUnknown(t *testing.T) {
	svc := NewCatalogService(&classCatalogStub{}, &examCatalogStub{}, &studentCatalogStub{}, nil)

	_, err := svc.GetExam(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListExamsPassesThrough(t *testing.T) {
	svc := NewCatalogService(
		&classCatalogStub{},
		&examCatalogStub{exams: []models.Exam{{ID: "exam-1", Name: "Annual", Year: 2026}}},
		&studentCatalogStub{},
		nil,
	)

	exams, err := svc.ListExams(context.Background())

	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, 2026, exams[0].Year)
}
