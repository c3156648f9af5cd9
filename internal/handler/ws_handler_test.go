package handler

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/exam"
	"github.com/stratton-prime/certexam-backend/internal/middleware"
	"github.com/stratton-prime/certexam-backend/internal/model"
	"github.com/stratton-prime/certexam-backend/internal/service"
	ws "github.com/stratton-prime/certexam-backend/internal/websocket"
)

type wsBank []model.Question

func (b wsBank) Bank(context.Context) ([]model.Question, error) { return b, nil }

type wsLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *wsLocks) Acquire(_ context.Context, identity, _ string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[identity] {
		return false, nil
	}
	l.held[identity] = true
	return true, nil
}

func (l *wsLocks) Release(_ context.Context, identity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, identity)
	return nil
}

func (l *wsLocks) Held(_ context.Context, identity string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[identity], nil
}

type wsResults struct {
	mu      sync.Mutex
	results []*model.ExamResult
}

func (r *wsResults) Append(_ context.Context, res *model.ExamResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

func (r *wsResults) CountFailures(context.Context, string) (int, error) { return 0, nil }

func (r *wsResults) HasPassed(context.Context, string) (bool, error) { return false, nil }

type wsEnv struct {
	server  *httptest.Server
	auth    *service.AuthService
	locks   *wsLocks
	results *wsResults
}

var wsAnswers = map[string]string{"q3-1": "b", "misc-1": "a thorough explanation"}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &wsEnv{
		auth:    service.NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}),
		locks:   &wsLocks{held: map[string]bool{}},
		results: &wsResults{},
	}

	policy := exam.DefaultPolicy()
	policy.CountdownSeconds = 0
	bank := wsBank{
		{ID: "q3-1", Category: model.CategoryLaw, Type: model.QuestionTypeSingleChoice, Text: "?", Options: []string{"a", "b"}, CorrectAnswer: "b"},
		{ID: "misc-1", Category: model.CategoryOther, Type: model.QuestionTypeOpen, Text: "Explain."},
	}
	sessions := service.NewExamSessionService(bank, env.locks, env.results, nil, policy, zerolog.Nop())

	r := gin.New()
	r.GET("/ws", middleware.RequireExamineeWSAuth(env.auth), NewWSHandler(sessions, zerolog.Nop(), nil).ExamStream)
	env.server = httptest.NewServer(r)
	t.Cleanup(env.server.Close)
	return env
}

func (e *wsEnv) dial(t *testing.T, email string) *websocket.Conn {
	t.Helper()
	token, err := e.auth.IssueExamineeToken(model.Examinee{Email: email, FullName: "Test", HierarchicalID: "T-1"})
	if err != nil {
		t.Fatal(err)
	}
	u := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?token=" + url.QueryEscape(token)
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (e *wsEnv) lockHeld(email string) bool {
	held, _ := e.locks.Held(context.Background(), email)
	return held
}

func readUntil(t *testing.T, conn *websocket.Conn, event ws.Event) map[string]interface{} {
	t.Helper()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var frame map[string]interface{}
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if frame["event"] == string(event) {
			return frame
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestExamStreamFullAttempt(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "jan@example.com")

	intro := readUntil(t, conn, ws.EventIntro)
	if intro["total"] != float64(2) || intro["session_id"] == "" {
		t.Fatalf("intro = %v", intro)
	}

	if err := conn.WriteJSON(ws.ActionRequest{Action: ws.ActionStart}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		frame := readUntil(t, conn, ws.EventQuestion)
		q := frame["question"].(map[string]interface{})
		if _, leaked := q["correct_answer"]; leaked {
			t.Fatalf("question frame leaks the answer: %v", q)
		}
		id := q["id"].(string)
		if err := conn.WriteJSON(ws.ActionRequest{Action: ws.ActionSubmit, QID: id, Answer: wsAnswers[id]}); err != nil {
			t.Fatal(err)
		}
	}

	done := readUntil(t, conn, ws.EventCompleted)
	if done["score"] != float64(100) || done["passed"] != true {
		t.Fatalf("completed = %v", done)
	}

	env.results.mu.Lock()
	stored := len(env.results.results)
	env.results.mu.Unlock()
	if stored != 1 {
		t.Fatalf("stored results = %d, want 1", stored)
	}
	if env.lockHeld("jan@example.com") {
		t.Fatal("lock still held after a persisted result")
	}
}

func TestExamStreamRejectsSecondConnection(t *testing.T) {
	env := newWSEnv(t)
	first := env.dial(t, "ann@example.com")
	readUntil(t, first, ws.EventIntro)

	second := env.dial(t, "ANN@example.com")
	frame := readUntil(t, second, ws.EventError)
	if frame["code"] != "SESSION_ALREADY_ACTIVE" {
		t.Fatalf("error frame = %v", frame)
	}

	// Leaving from INTRO gives the lock back.
	first.Close()
	waitFor(t, "lock release", func() bool { return !env.lockHeld("ann@example.com") })
}

func TestExamStreamDisconnectMidExamKeepsLock(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "eve@example.com")
	readUntil(t, conn, ws.EventIntro)

	if err := conn.WriteJSON(ws.ActionRequest{Action: ws.ActionStart}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, ws.EventQuestion)

	conn.Close()
	// Give the handler time to notice the disconnect and abandon the session.
	time.Sleep(200 * time.Millisecond)
	if !env.lockHeld("eve@example.com") {
		t.Fatal("lock released after a mid-exam disconnect")
	}
}

func TestExamStreamRejectsBadActions(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "bob@example.com")
	readUntil(t, conn, ws.EventIntro)

	// Submitting before the exam started.
	if err := conn.WriteJSON(ws.ActionRequest{Action: ws.ActionSubmit, Answer: "x"}); err != nil {
		t.Fatal(err)
	}
	if frame := readUntil(t, conn, ws.EventError); frame["code"] != "INVALID_ACTION" {
		t.Fatalf("error frame = %v", frame)
	}

	if err := conn.WriteJSON(ws.ActionRequest{Action: "dance"}); err != nil {
		t.Fatal(err)
	}
	if frame := readUntil(t, conn, ws.EventError); frame["code"] != "INVALID_PAYLOAD" {
		t.Fatalf("error frame = %v", frame)
	}

	if err := conn.WriteJSON(ws.ActionRequest{Action: ws.ActionPing}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, ws.EventPong)
}
