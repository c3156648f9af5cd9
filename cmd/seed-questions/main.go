package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/database"
	"github.com/stratton-prime/certexam-backend/internal/logger"
	"github.com/stratton-prime/certexam-backend/internal/model"
	"github.com/stratton-prime/certexam-backend/internal/repository"
	"github.com/stratton-prime/certexam-backend/internal/service"
	"github.com/stratton-prime/certexam-backend/internal/validator"
	"gopkg.in/yaml.v3"
)

// questionFile is the layout of a seed file:
//
//	questions:
//	  - id: q3-001
//	    category: LAW
//	    type: SINGLE_CHOICE
//	    text: ...
//	    options: [..., ...]
//	    correct_answer: ...
type questionFile struct {
	Questions []model.QuestionInput `yaml:"questions"`
}

func main() {
	path := flag.String("file", "questions.yaml", "YAML file with the question bank")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	questions, err := loadQuestions(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("Invalid question file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	bankService := service.NewQuestionBankService(repository.NewQuestionRepository(pool), rdb, log)

	fmt.Printf("=== Importing %d questions from %s ===\n", len(questions), *path)
	if err := bankService.Import(ctx, questions); err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}
	fmt.Println("Seed completed, question bank cache refreshed.")
}

func loadQuestions(path string) ([]model.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file questionFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("no questions in file")
	}

	questions := make([]model.Question, 0, len(file.Questions))
	for i, in := range file.Questions {
		if err := binding.Validator.ValidateStruct(&in); err != nil {
			return nil, fmt.Errorf("question %d (%s): %v", i+1, in.ID, validator.TranslateErrors(err))
		}
		questions = append(questions, in.ToQuestion())
	}
	return questions, nil
}
