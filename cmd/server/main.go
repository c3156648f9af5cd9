package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/database"
	"github.com/stratton-prime/certexam-backend/internal/handler"
	"github.com/stratton-prime/certexam-backend/internal/logger"
	"github.com/stratton-prime/certexam-backend/internal/mailer"
	"github.com/stratton-prime/certexam-backend/internal/middleware"
	"github.com/stratton-prime/certexam-backend/internal/repository"
	"github.com/stratton-prime/certexam-backend/internal/router"
	"github.com/stratton-prime/certexam-backend/internal/service"
	"github.com/stratton-prime/certexam-backend/internal/validator"
	"github.com/stratton-prime/certexam-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting certification exam backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Load Exam Policy ──────────────────────────────────────────────
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.PolicyFile).Msg("Invalid exam policy")
	}
	log.Info().
		Int("question_seconds", policy.QuestionSeconds).
		Int("countdown_seconds", policy.CountdownSeconds).
		Int("pass_threshold", policy.PassThreshold).
		Int("target_size", policy.TargetSize).
		Msg("Exam policy loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewExamResultRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	bankService := service.NewQuestionBankService(questionRepo, rdb, log)
	resultService := service.NewResultService(resultRepo)
	notificationService := service.NewNotificationService(rdb, log)
	sessionService := service.NewExamSessionService(
		bankService,
		service.NewRedisSessionLock(rdb),
		resultRepo,
		notificationService,
		policy,
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Examinee: handler.NewExamineeHandler(sessionService),
		Admin:    handler.NewAdminHandler(resultService, sessionService, bankService, authService, log),
		WS:       handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(rdb, sessionService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	sender := mailer.NewSMTPSender(cfg.SMTP, log)
	if sender.DevMode() {
		log.Warn().Msg("SMTP_HOST not set, reports will be logged instead of mailed")
	}
	notificationWorker := worker.NewNotificationWorker(rdb, sender, cfg.ReportCCEmail, log)
	go notificationWorker.Start(workerCtx)

	// Rate limiter for WebSocket upgrades (20 per minute per IP).
	wsLimiter := middleware.NewRateLimiter(20, time.Minute)
	go wsLimiter.RunSweeper(workerCtx.Done())

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load the question bank into Redis BEFORE accepting traffic.
	if err := bankService.Prewarm(ctx); err != nil {
		log.Warn().Err(err).Msg("Question bank prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, wsLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Hijacked WebSocket connections survive srv.Shutdown. Abandon their
	// sessions; the locks stay until an admin releases them.
	sessionService.Shutdown()

	// 3. Stop background workers and give in-flight sends a moment.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
