package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

// ClassRepository provides database access for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// GetByID returns a class by identifier.
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, level, scheme, created_at, updated_at FROM classes WHERE id = $1 LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &class, nil
}

// List returns all classes ordered by name.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT id, name, level, scheme, created_at, updated_at FROM classes ORDER BY name`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}
