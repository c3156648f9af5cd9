package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/mailer"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

const (
	NotificationPollTimeout = 1 * time.Second
	NotificationSendTimeout = 30 * time.Second
	NotificationMaxAttempts = 5
)

// NotificationWorker drains the report queue and emails each report.
type NotificationWorker struct {
	rdb    *redis.Client
	sender mailer.Sender
	cc     string
	log    zerolog.Logger
}

func NewNotificationWorker(rdb *redis.Client, sender mailer.Sender, cc string, log zerolog.Logger) *NotificationWorker {
	return &NotificationWorker{
		rdb:    rdb,
		sender: sender,
		cc:     cc,
		log:    log.With().Str("component", "notification_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotificationWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested, notification worker stopped")
			return

		default:
			item, err := w.rdb.BLPop(ctx, NotificationPollTimeout, config.WorkerKey.ReportNotificationQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			if retry := w.handle(ctx, item[1]); retry != nil {
				w.requeue(retry)
			}
		}
	}
}

// handle delivers one queued report. It returns the job to push back when
// delivery failed and attempts remain.
func (w *NotificationWorker) handle(ctx context.Context, raw string) *model.ReportNotification {
	var job model.ReportNotification
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload")
		return nil
	}

	log := w.log.With().
		Str("result_id", job.Report.Result.ID.String()).
		Str("email", job.Report.Result.Examinee.Email).
		Logger()

	msg, err := mailer.RenderReport(job.Report, w.cc)
	if err != nil {
		log.Error().Err(err).Msg("Report rendering failed, dropping")
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, NotificationSendTimeout)
	defer cancel()

	if err := w.sender.Send(sendCtx, msg); err != nil {
		job.Attempts++
		if job.Attempts >= NotificationMaxAttempts {
			log.Error().Err(err).Int("attempts", job.Attempts).Msg("Report delivery failed, giving up")
			return nil
		}
		log.Warn().Err(err).Int("attempts", job.Attempts).Msg("Report delivery failed, requeueing")
		return &job
	}

	log.Info().Strs("to", msg.To).Msg("Report delivered")
	return nil
}

func (w *NotificationWorker) requeue(job *model.ReportNotification) {
	raw, err := json.Marshal(job)
	if err != nil {
		w.log.Error().Err(err).Msg("Marshal requeued report failed")
		return
	}
	// Background context: a requeue during shutdown must still land.
	if err := w.rdb.RPush(context.Background(), config.WorkerKey.ReportNotificationQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).Msg("Requeue report failed")
	}
}
