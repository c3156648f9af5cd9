package websocket

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stratton-prime/certexam-backend/internal/exam"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

func TestFromSessionEventQuestionHidesAnswer(t *testing.T) {
	q := model.Question{ID: "q3-1", Type: model.QuestionTypeSingleChoice, Text: "?", Options: []string{"a", "b"}, CorrectAnswer: "a"}
	view := q.ForExaminee()

	frame := FromSessionEvent(exam.Event{Type: exam.EventQuestion, Index: 2, Total: 20, Seconds: 70, Playable: 18, Question: &view})

	raw, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["event"] != "question" || decoded["remaining"] != float64(70) || decoded["index"] != float64(2) {
		t.Fatalf("frame = %s", raw)
	}
	question := decoded["question"].(map[string]interface{})
	if _, leaked := question["correct_answer"]; leaked {
		t.Fatalf("expected answer sent to client: %s", raw)
	}
}

func TestFromSessionEventCompletedAndError(t *testing.T) {
	id := uuid.New()
	res := &model.ExamResult{ID: id, Score: 85, Passed: true, CorrectCount: 17, TotalCount: 20}

	got, ok := FromSessionEvent(exam.Event{Type: exam.EventCompleted, Result: res}).(CompletedResponse)
	if !ok {
		t.Fatal("completed event not mapped to CompletedResponse")
	}
	want := CompletedResponse{Event: EventCompleted, ResultID: id.String(), Score: 85, Passed: true, CorrectCount: 17, TotalCount: 20}
	if got != want {
		t.Fatalf("completed = %+v, want %+v", got, want)
	}

	errFrame, ok := FromSessionEvent(exam.Event{Type: exam.EventError, Err: errors.New("persist result: db down")}).(ErrorResponse)
	if !ok || errFrame.Code != "SESSION_FAILED" || errFrame.Event != EventError {
		t.Fatalf("error frame = %+v", errFrame)
	}
	if strings.Contains(errFrame.Error, "db down") {
		t.Fatalf("internal cause leaked to client: %q", errFrame.Error)
	}
}

func TestFromSessionEventState(t *testing.T) {
	got := FromSessionEvent(exam.Event{Type: exam.EventState, State: exam.StateCountdown, Total: 20})
	if got != (StateResponse{Event: EventState, State: "COUNTDOWN", Total: 20}) {
		t.Fatalf("state = %+v", got)
	}
	if FromSessionEvent(exam.Event{Type: "unknown"}) != nil {
		t.Fatal("unknown event mapped to a frame")
	}
}
