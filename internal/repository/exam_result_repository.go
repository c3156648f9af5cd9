package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

// ExamResultRepository is the append-only store of completed attempts.
type ExamResultRepository struct {
	pool *pgxpool.Pool
}

// NewExamResultRepository creates a new ExamResultRepository.
func NewExamResultRepository(pool *pgxpool.Pool) *ExamResultRepository {
	return &ExamResultRepository{pool: pool}
}

// Append inserts a result. Results are never updated.
func (r *ExamResultRepository) Append(ctx context.Context, res *model.ExamResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_results
		   (id, email, full_name, hierarchical_id, manager_name, manager_email,
		    score, passed, correct_count, total_count, answers_log, taken_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		res.ID, res.Examinee.Email, res.Examinee.FullName, res.Examinee.HierarchicalID,
		res.Examinee.ManagerName, res.Examinee.ManagerEmail,
		res.Score, res.Passed, res.CorrectCount, res.TotalCount, res.AnswersLog, res.TakenAt,
	)
	return err
}

// CountFailures returns the number of failed attempts stored for an email.
func (r *ExamResultRepository) CountFailures(ctx context.Context, email string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_results WHERE email = $1 AND NOT passed`, email,
	).Scan(&n)
	return n, err
}

// HasPassed reports whether any stored attempt for the email passed.
func (r *ExamResultRepository) HasPassed(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exam_results WHERE email = $1 AND passed)`, email,
	).Scan(&ok)
	return ok, err
}

// List returns results newest first, optionally filtered by email and outcome.
func (r *ExamResultRepository) List(ctx context.Context, page, perPage int, email string, passed *bool) ([]model.ExamResult, int64, error) {
	offset := (page - 1) * perPage

	baseQuery := ` FROM exam_results WHERE 1=1`
	var args []any

	if email != "" {
		args = append(args, email)
		baseQuery += fmt.Sprintf(" AND email = $%d", len(args))
	}
	if passed != nil {
		args = append(args, *passed)
		baseQuery += fmt.Sprintf(" AND passed = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, email, full_name, hierarchical_id, manager_name, manager_email,
	                 score, passed, correct_count, total_count, answers_log, taken_at` +
		baseQuery +
		fmt.Sprintf(" ORDER BY taken_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []model.ExamResult{}
	for rows.Next() {
		var res model.ExamResult
		if err := rows.Scan(
			&res.ID, &res.Examinee.Email, &res.Examinee.FullName, &res.Examinee.HierarchicalID,
			&res.Examinee.ManagerName, &res.Examinee.ManagerEmail,
			&res.Score, &res.Passed, &res.CorrectCount, &res.TotalCount, &res.AnswersLog, &res.TakenAt,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// Stats counts stored results by outcome.
func (r *ExamResultRepository) Stats(ctx context.Context) (model.ResultStats, error) {
	var s model.ResultStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE passed),
		        COUNT(*) FILTER (WHERE NOT passed)
		 FROM exam_results`,
	).Scan(&s.Total, &s.Passed, &s.Failed)
	return s, err
}
