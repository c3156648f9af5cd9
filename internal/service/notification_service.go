package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

// NotificationService queues result reports for the notification worker.
type NotificationService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(rdb *redis.Client, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		rdb: rdb,
		log: log.With().Str("component", "notification_service").Logger(),
	}
}

// Notify pushes the report onto the notification queue.
func (s *NotificationService) Notify(ctx context.Context, report model.Report) error {
	payload, err := json.Marshal(model.ReportNotification{Report: report})
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.ReportNotificationQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue report: %w", err)
	}

	s.log.Debug().
		Str("result_id", report.Result.ID.String()).
		Str("email", report.Result.Examinee.Email).
		Msg("Report queued")
	return nil
}
