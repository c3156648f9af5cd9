package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/model"
	"github.com/stratton-prime/certexam-backend/internal/repository"
)

// QuestionBankService serves the question bank from a Redis copy, falling
// back to PostgreSQL when the copy is missing or unreadable.
type QuestionBankService struct {
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuestionBankService creates a new QuestionBankService.
func NewQuestionBankService(questionRepo *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *QuestionBankService {
	return &QuestionBankService{
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "question_bank_service").Logger(),
	}
}

// Bank returns the full bank. Cache problems are logged and recovered from.
func (s *QuestionBankService) Bank(ctx context.Context) ([]model.Question, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.QuestionBankKey()).Bytes()
	switch {
	case err == nil:
		var bank []model.Question
		jerr := json.Unmarshal(data, &bank)
		if jerr == nil {
			return bank, nil
		}
		s.log.Warn().Err(jerr).Msg("Cached bank is malformed, reloading from database")
	case !errors.Is(err, redis.Nil):
		s.log.Warn().Err(err).Msg("Bank cache unavailable, reading database")
	}

	bank, err := s.questionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if err := s.store(ctx, bank); err != nil {
		s.log.Warn().Err(err).Msg("Failed to refresh bank cache")
	}
	return bank, nil
}

// Prewarm loads the bank into Redis at startup.
func (s *QuestionBankService) Prewarm(ctx context.Context) error {
	bank, err := s.questionRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	if len(bank) == 0 {
		s.log.Warn().Msg("Question bank is empty, exams cannot start")
	}
	if err := s.store(ctx, bank); err != nil {
		return err
	}
	s.log.Info().Int("questions", len(bank)).Msg("Question bank cached")
	return nil
}

// Import upserts questions and refreshes the cache.
func (s *QuestionBankService) Import(ctx context.Context, questions []model.Question) error {
	if err := s.questionRepo.UpsertMany(ctx, questions); err != nil {
		return fmt.Errorf("upsert questions: %w", err)
	}
	return s.Prewarm(ctx)
}

func (s *QuestionBankService) store(ctx context.Context, bank []model.Question) error {
	if bank == nil {
		bank = []model.Question{}
	}
	payload, err := json.Marshal(bank)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.QuestionBankKey(), payload, 0).Err(); err != nil {
		return fmt.Errorf("cache bank: %w", err)
	}
	return nil
}
