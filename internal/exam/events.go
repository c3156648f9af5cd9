package exam

import (
	"context"
	"errors"

	"github.com/stratton-prime/certexam-backend/internal/model"
)

// Domain errors.
var (
	ErrSessionActive       = errors.New("an exam session is already in progress for this identity")
	ErrEmptyQuestionSet    = errors.New("question bank is empty, exam cannot start")
	ErrInvalidTransition   = errors.New("action not allowed in the current session state")
	ErrQuestionNotPlayable = errors.New("question is answered, expired or not on screen")
	ErrAttemptsExhausted   = errors.New("maximum number of failed attempts reached")
	ErrAlreadyPassed       = errors.New("identity has already passed the exam")
)

// State is a step of the session state machine.
type State string

const (
	StateIntro     State = "INTRO"
	StateCountdown State = "COUNTDOWN"
	StateExam      State = "EXAM"
	StateFinishing State = "FINISHING"
)

// EventType names what an Event reports.
type EventType string

const (
	EventState     EventType = "state"
	EventCountdown EventType = "countdown"
	EventQuestion  EventType = "question"
	EventTick      EventType = "tick"
	EventAdvisory  EventType = "advisory"
	EventCompleted EventType = "completed"
	EventError     EventType = "error"
)

// Event is emitted to the host on every observable change.
type Event struct {
	Type     EventType
	State    State
	Seconds  int
	Index    int
	Total    int
	Playable int
	Question *model.QuestionForExaminee
	Message  string
	Result   *model.ExamResult
	Err      error
}

// EventSink receives session events. Publish is called with the session
// mutex held and must not call back into the session.
type EventSink interface {
	Publish(Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

// Publish calls f(e).
func (f EventSinkFunc) Publish(e Event) { f(e) }

// LockStore persists the per-identity "exam in progress" flag.
type LockStore interface {
	// Acquire sets the lock unless it is already held and reports whether it did.
	Acquire(ctx context.Context, identity, sessionID string) (bool, error)
	Release(ctx context.Context, identity string) error
}

// ResultStore is the append-only store of exam results.
type ResultStore interface {
	Append(ctx context.Context, result *model.ExamResult) error
	CountFailures(ctx context.Context, email string) (int, error)
	HasPassed(ctx context.Context, email string) (bool, error)
}

// Notifier delivers a completed report. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, report model.Report) error
}
