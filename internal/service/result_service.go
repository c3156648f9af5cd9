package service

import (
	"context"
	"strings"

	"github.com/stratton-prime/certexam-backend/internal/model"
	"github.com/stratton-prime/certexam-backend/internal/repository"
	"github.com/stratton-prime/certexam-backend/internal/response"
)

// ResultService exposes stored exam results to the admin dashboard.
type ResultService struct {
	resultRepo *repository.ExamResultRepository
}

// NewResultService creates a new ResultService.
func NewResultService(resultRepo *repository.ExamResultRepository) *ResultService {
	return &ResultService{resultRepo: resultRepo}
}

// List returns a page of results, newest first.
func (s *ResultService) List(ctx context.Context, page, perPage int, email string, passed *bool) ([]model.ExamResult, *response.Pagination, error) {
	page, perPage = clampPage(page, perPage)

	results, total, err := s.resultRepo.List(ctx, page, perPage, strings.ToLower(strings.TrimSpace(email)), passed)
	if err != nil {
		return nil, nil, err
	}

	return results, response.NewPagination(page, perPage, total), nil
}

// Stats returns outcome counts across all results.
func (s *ResultService) Stats(ctx context.Context) (model.ResultStats, error) {
	return s.resultRepo.Stats(ctx)
}

func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
