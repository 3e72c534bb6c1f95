package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

// StudentRepository provides database access for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// GetByID returns a student by identifier.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, admission_no, full_name, class_id, active, created_at, updated_at FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &student, nil
}

// ListByClass returns the active students of a class ordered by name.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	const query = `SELECT id, admission_no, full_name, class_id, active, created_at, updated_at FROM students WHERE class_id = $1 AND active = TRUE ORDER BY full_name`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}
