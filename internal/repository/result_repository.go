package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/matokeo-app/matokeo-api/internal/models"
)

// ResultRepository provides database access for subject results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new instance of ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

const resultColumns = `r.id, r.student_id, r.subject_id, s.code AS subject_code, s.name AS subject_name, r.exam_id, r.marks_obtained, s.is_principal, s.is_subsidiary, r.created_at, r.updated_at`

// ListByClassExam returns every result for students of a class in one
// exam, including results for students who sat only some subjects.
func (r *ResultRepository) ListByClassExam(ctx context.Context, classID, examID string) ([]models.SubjectResult, error) {
	const query = `SELECT ` + resultColumns + `
FROM subject_results r
JOIN subjects s ON s.id = r.subject_id
JOIN students st ON st.id = r.student_id
WHERE st.class_id = $1 AND r.exam_id = $2
ORDER BY r.student_id, s.code, r.updated_at`
	var results []models.SubjectResult
	if err := r.db.SelectContext(ctx, &results, query, classID, examID); err != nil {
		return nil, fmt.Errorf("list results by class exam: %w", err)
	}
	return results, nil
}

// ListByStudentExam returns all results for one student in one exam.
func (r *ResultRepository) ListByStudentExam(ctx context.Context, studentID, examID string) ([]models.SubjectResult, error) {
	const query = `SELECT ` + resultColumns + `
FROM subject_results r
JOIN subjects s ON s.id = r.subject_id
WHERE r.student_id = $1 AND r.exam_id = $2
ORDER BY s.code, r.updated_at`
	var results []models.SubjectResult
	if err := r.db.SelectContext(ctx, &results, query, studentID, examID); err != nil {
		return nil, fmt.Errorf("list results by student exam: %w", err)
	}
	return results, nil
}

// List returns results matching the provided filters.
func (r *ResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.SubjectResult, error) {
	baseQuery := `FROM subject_results r
JOIN subjects s ON s.id = r.subject_id
JOIN students st ON st.id = r.student_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("r.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("r.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.ExamID != "" {
		conditions = append(conditions, fmt.Sprintf("r.exam_id = $%d", len(args)+1))
		args = append(args, filter.ExamID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("st.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	query := "SELECT " + resultColumns + " " + baseQuery + " ORDER BY r.student_id, s.code, r.updated_at"

	var results []models.SubjectResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// Upsert inserts a result or, when a row already exists for the same
// student + subject + exam, records it as a new row so duplicate
// detection can inspect the full history.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.SubjectResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	if result.UpdatedAt.IsZero() {
		result.UpdatedAt = now
	}

	const query = `INSERT INTO subject_results (id, student_id, subject_id, exam_id, marks_obtained, created_at, updated_at)
VALUES (:id, :student_id, :subject_id, :exam_id, :marks_obtained, :created_at, :updated_at)
ON CONFLICT (id) DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// FindDuplicateGroups returns, per exam, every (student, subject) pair
// that has more than one stored row, with the rows themselves.
func (r *ResultRepository) FindDuplicateGroups(ctx context.Context, examID string) ([]models.DuplicateGroup, error) {
	const query = `SELECT ` + resultColumns + `
FROM subject_results r
JOIN subjects s ON s.id = r.subject_id
WHERE r.exam_id = $1 AND (r.student_id, r.subject_id) IN (
    SELECT student_id, subject_id FROM subject_results
    WHERE exam_id = $1 GROUP BY student_id, subject_id HAVING COUNT(*) > 1
)
ORDER BY r.student_id, r.subject_id, r.created_at`
	var rows []models.SubjectResult
	if err := r.db.SelectContext(ctx, &rows, query, examID); err != nil {
		return nil, fmt.Errorf("find duplicate groups: %w", err)
	}

	var groups []models.DuplicateGroup
	for _, row := range rows {
		n := len(groups)
		if n > 0 && groups[n-1].StudentID == row.StudentID && groups[n-1].SubjectID == row.SubjectID {
			groups[n-1].Candidates = append(groups[n-1].Candidates, row)
			continue
		}
		groups = append(groups, models.DuplicateGroup{
			StudentID:  row.StudentID,
			SubjectID:  row.SubjectID,
			ExamID:     row.ExamID,
			Candidates: []models.SubjectResult{row},
		})
	}
	return groups, nil
}

// DeleteByIDs removes the given result rows in one transaction.
func (r *ResultRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete results: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := sqlx.In(`DELETE FROM subject_results WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("build delete results query: %w", err)
	}
	query = tx.Rebind(query)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete results: %w", err)
	}
	return nil
}
