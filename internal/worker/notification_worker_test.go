package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/mailer"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

type fakeSender struct {
	err  error
	sent []mailer.Message
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func queued(t *testing.T, attempts int) string {
	t.Helper()
	raw, err := json.Marshal(model.ReportNotification{
		Report: model.Report{
			Result: model.ExamResult{
				ID:       uuid.New(),
				Examinee: model.Examinee{Email: "jan@stratton-prime.pl", ManagerEmail: "boss@stratton-prime.pl"},
				Score:    80,
				Passed:   true,
			},
		},
		Attempts: attempts,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestNotificationWorkerDelivers(t *testing.T) {
	sender := &fakeSender{}
	w := NewNotificationWorker(nil, sender, "hq@stratton-prime.pl", zerolog.Nop())

	if retry := w.handle(context.Background(), queued(t, 0)); retry != nil {
		t.Fatalf("unexpected retry %+v", retry)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if to := sender.sent[0].To; len(to) != 3 {
		t.Fatalf("recipients = %v", to)
	}
}

func TestNotificationWorkerRetriesThenGivesUp(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay down")}
	w := NewNotificationWorker(nil, sender, "", zerolog.Nop())

	retry := w.handle(context.Background(), queued(t, 0))
	if retry == nil || retry.Attempts != 1 {
		t.Fatalf("retry = %+v, want attempts 1", retry)
	}

	if retry := w.handle(context.Background(), queued(t, NotificationMaxAttempts-1)); retry != nil {
		t.Fatalf("retry after last attempt = %+v", retry)
	}
}

func TestNotificationWorkerDropsGarbage(t *testing.T) {
	w := NewNotificationWorker(nil, &fakeSender{}, "", zerolog.Nop())
	if retry := w.handle(context.Background(), "{not json"); retry != nil {
		t.Fatalf("garbage produced retry %+v", retry)
	}
}
