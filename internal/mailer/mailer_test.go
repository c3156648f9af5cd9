package mailer

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

func sampleReport() model.Report {
	return model.Report{
		Result: model.ExamResult{
			Examinee: model.Examinee{
				Email:          "jan@stratton-prime.pl",
				FullName:       "Jan <Kowalski>",
				HierarchicalID: "GDJJ/JA",
				ManagerEmail:   "Boss@Stratton-Prime.pl",
			},
			Score:        43,
			CorrectCount: 3,
			TotalCount:   7,
			TakenAt:      time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
			AnswersLog: []model.AnswerLogEntry{
				{QuestionText: "Pick two", UserAnswer: "b, a", Justification: "art. 5", CorrectAnswer: "a, b", IsCorrect: true},
				{QuestionText: "Explain", UserAnswer: "(no answer)", CorrectAnswer: "(descriptive)"},
			},
		},
		PriorFailures: 1,
		FailureCount:  2,
	}
}

func TestRecipients(t *testing.T) {
	got := Recipients(sampleReport(), "hq@stratton-prime.pl")
	want := []string{"jan@stratton-prime.pl", "boss@stratton-prime.pl", "hq@stratton-prime.pl"}
	if !slices.Equal(got, want) {
		t.Fatalf("Recipients = %v, want %v", got, want)
	}

	r := sampleReport()
	r.Result.Examinee.ManagerEmail = ""
	got = Recipients(r, "JAN@stratton-prime.pl")
	if !slices.Equal(got, []string{"jan@stratton-prime.pl"}) {
		t.Fatalf("Recipients without manager = %v", got)
	}
}

func TestRenderReport(t *testing.T) {
	msg, err := RenderReport(sampleReport(), "")
	if err != nil {
		t.Fatalf("RenderReport: %v", err)
	}

	if !strings.Contains(msg.Subject, "FAILED") || !strings.Contains(msg.Subject, "43%") {
		t.Fatalf("subject = %q", msg.Subject)
	}
	for _, want := range []string{
		"Score: <strong>43%</strong> (3/7 correct)",
		"Failed attempts so far: 2",
		"Jan &lt;Kowalski&gt;",
		"<em>art. 5</em>",
		"(descriptive)",
		"2025-03-01 09:30 UTC",
	} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(msg.HTML, "<Kowalski>") {
		t.Error("examinee name not escaped")
	}
}

func TestSMTPSenderDevMode(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{}, zerolog.Nop())
	if !s.DevMode() {
		t.Fatal("empty host should be dev mode")
	}
	if err := s.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "x"}); err != nil {
		t.Fatalf("dev mode Send: %v", err)
	}
	if err := s.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("message without recipients accepted")
	}
}

func TestComposeHeaders(t *testing.T) {
	raw := string(compose("exam@stratton-prime.pl", Message{
		To:      []string{"a@b.c", "d@e.f"},
		Subject: "Wynik egzaminu: zaliczony",
		HTML:    "<p>ok</p>",
	}))
	if !strings.HasPrefix(raw, "From: exam@stratton-prime.pl\r\nTo: a@b.c, d@e.f\r\n") {
		t.Fatalf("headers = %q", raw)
	}
	if !strings.HasSuffix(raw, "\r\n\r\n<p>ok</p>\r\n") {
		t.Fatalf("body = %q", raw)
	}
}
