package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListAll retrieves the whole bank in insertion order.
func (r *QuestionRepository) ListAll(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, question_type, question_text, options, correct_answer, grading_hint
		 FROM questions
		 ORDER BY seq`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Category, &q.Type, &q.Text, &q.Options, &q.CorrectAnswer, &q.GradingHint); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// UpsertMany imports questions in one transaction. Existing IDs are
// overwritten in place and keep their position in the bank.
func (r *QuestionRepository) UpsertMany(ctx context.Context, questions []model.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, q := range questions {
			opts := q.Options
			if opts == nil {
				opts = []string{}
			}
			batch.Queue(
				`INSERT INTO questions (id, category, question_type, question_text, options, correct_answer, grading_hint)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (id) DO UPDATE SET
				   category = EXCLUDED.category,
				   question_type = EXCLUDED.question_type,
				   question_text = EXCLUDED.question_text,
				   options = EXCLUDED.options,
				   correct_answer = EXCLUDED.correct_answer,
				   grading_hint = EXCLUDED.grading_hint,
				   updated_at = NOW()`,
				q.ID, q.Category, q.Type, q.Text, opts, q.CorrectAnswer, q.GradingHint,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
