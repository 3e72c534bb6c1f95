package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

// ExamRepository provides database access for exam sittings.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new instance of ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// GetByID returns an exam by identifier.
func (r *ExamRepository) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, name, year, term, created_at FROM exams WHERE id = $1 LIMIT 1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return &exam, nil
}

// List returns exams ordered most recent first.
func (r *ExamRepository) List(ctx context.Context) ([]models.Exam, error) {
	const query = `SELECT id, name, year, term, created_at FROM exams ORDER BY year DESC, created_at DESC`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}
