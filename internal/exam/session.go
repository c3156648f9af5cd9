package exam

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

// ErrSessionClosed is returned by Result when a session ended without a result.
var ErrSessionClosed = errors.New("session closed before completion")

const defaultStoreTimeout = 15 * time.Second

// Deps are the collaborators a Session talks to. Locks and Results are required.
type Deps struct {
	Locks     LockStore
	Results   ResultStore
	Notifier  Notifier
	Scheduler Scheduler
	Rand      RandSource
	Sink      EventSink
	Log       zerolog.Logger
	Now       func() time.Time

	// StoreTimeout bounds the persistence calls made while finishing.
	StoreTimeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Scheduler == nil {
		d.Scheduler = TickerScheduler{}
	}
	if d.Rand == nil {
		d.Rand = DefaultRand
	}
	if d.Sink == nil {
		d.Sink = EventSinkFunc(func(Event) {})
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.StoreTimeout <= 0 {
		d.StoreTimeout = defaultStoreTimeout
	}
	return d
}

// Session is one exam attempt: INTRO → COUNTDOWN → EXAM → FINISHING.
// All methods are safe for concurrent use.
type Session struct {
	id       uuid.UUID
	examinee model.Examinee
	policy   Policy
	deps     Deps
	log      zerolog.Logger

	mu            sync.Mutex
	state         State
	closed        bool
	questions     []model.Question
	answers       map[string]model.Answer
	timers        *TimerBank
	position      int
	countdown     int
	priorFailures int
	cancelTick    func()
	tickGen       uint64

	done       chan struct{}
	terminated bool
	result     *model.ExamResult
	err        error
}

// View is a point-in-time snapshot of a session.
type View struct {
	ID        string                     `json:"id"`
	State     State                      `json:"state"`
	Position  int                        `json:"position"`
	Total     int                        `json:"total"`
	Countdown int                        `json:"countdown"`
	Remaining int                        `json:"remaining"`
	Playable  int                        `json:"playable"`
	Answered  int                        `json:"answered"`
	Question  *model.QuestionForExaminee `json:"question,omitempty"`
}

// NormalizeIdentity canonicalises an email for lock and result lookups.
func NormalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Open gates the attempt, takes the session lock and builds the question
// sequence. The returned session is in INTRO. The lock stays set until the
// result is persisted or Abort is called.
func Open(ctx context.Context, examinee model.Examinee, bank []model.Question, policy Policy, deps Deps) (*Session, error) {
	deps = deps.withDefaults()

	email := NormalizeIdentity(examinee.Email)
	if email == "" {
		return nil, errors.New("examinee email is required")
	}
	examinee.Email = email

	passed, err := deps.Results.HasPassed(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check passed: %w", err)
	}
	if passed && !policy.AllowRetakeAfterPass {
		return nil, ErrAlreadyPassed
	}

	failures, err := deps.Results.CountFailures(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("count failures: %w", err)
	}
	if policy.MaxFailedAttempts > 0 && failures >= policy.MaxFailedAttempts {
		return nil, ErrAttemptsExhausted
	}

	id := uuid.New()
	acquired, err := deps.Locks.Acquire(ctx, email, id.String())
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !acquired {
		return nil, ErrSessionActive
	}

	var seq []model.Question
	if policy.IsFullBankIdentity(email) {
		seq = BuildFullBank(deps.Rand, bank)
	} else {
		seq = BuildSequence(deps.Rand, bank, policy)
	}

	ids := make([]string, len(seq))
	for i, q := range seq {
		ids[i] = q.ID
	}

	s := &Session{
		id:            id,
		examinee:      examinee,
		policy:        policy,
		deps:          deps,
		state:         StateIntro,
		questions:     seq,
		answers:       make(map[string]model.Answer, len(seq)),
		timers:        NewTimerBank(ids, policy.QuestionSeconds),
		priorFailures: failures,
		done:          make(chan struct{}),
	}
	s.log = deps.Log.With().
		Str("component", "exam_session").
		Str("session_id", id.String()).
		Str("email", email).
		Logger()

	s.mu.Lock()
	s.publishState()
	s.mu.Unlock()

	s.log.Info().
		Int("questions", len(seq)).
		Int("prior_failures", failures).
		Msg("Session opened")
	return s, nil
}

// ID returns the session identifier stored in the lock.
func (s *Session) ID() string { return s.id.String() }

// Examinee returns the identity the session runs for.
func (s *Session) Examinee() model.Examinee { return s.examinee }

// Done is closed once the session reached a terminal outcome.
func (s *Session) Done() <-chan struct{} { return s.done }

// Result returns the persisted result once Done is closed.
func (s *Session) Result() (*model.ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.terminated {
		return nil, ErrInvalidTransition
	}
	return s.result, s.err
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot describes the session as it is right now.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:        s.id.String(),
		State:     s.state,
		Position:  s.position,
		Total:     len(s.questions),
		Countdown: s.countdown,
		Playable:  s.playableCount(),
		Answered:  len(s.answers),
	}
	if s.state == StateExam && len(s.questions) > 0 {
		q := s.questions[s.position]
		view := q.ForExaminee()
		v.Question = &view
		v.Remaining = s.timers.Remaining(q.ID)
	}
	return v
}

// Start leaves INTRO and begins the pre-exam countdown.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateIntro {
		return ErrInvalidTransition
	}
	if len(s.questions) == 0 {
		return ErrEmptyQuestionSet
	}

	s.state = StateCountdown
	s.countdown = s.policy.CountdownSeconds
	s.publishState()

	if s.countdown <= 0 {
		s.enterExam()
		return nil
	}

	s.emit(Event{Type: EventCountdown, Seconds: s.countdown})
	s.startTicker(s.onCountdownTick)
	return nil
}

// Submit records an answer for the question on screen and moves on.
// An empty value is a skip. questionID guards against a client acting on a
// question the session already left; pass "" to target the current one.
func (s *Session) Submit(questionID, value, justification string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateExam {
		return ErrInvalidTransition
	}

	q := s.questions[s.position]
	if questionID != "" && questionID != q.ID {
		return ErrQuestionNotPlayable
	}
	if !s.playable(q.ID) {
		return ErrQuestionNotPlayable
	}

	if value != "" {
		s.answers[q.ID] = model.Answer{Value: value, Justification: justification}
	}
	s.navigate()
	return nil
}

// Skip leaves the current question unanswered, with its time banked.
func (s *Session) Skip(questionID string) error {
	return s.Submit(questionID, "", "")
}

// Abort releases the lock of a session that never left INTRO, e.g. after
// ErrEmptyQuestionSet.
func (s *Session) Abort(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.state != StateIntro {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.deps.Locks.Release(ctx, s.examinee.Email); err != nil {
		return fmt.Errorf("release session lock: %w", err)
	}
	s.log.Info().Msg("Session aborted before start")
	s.terminate(nil, ErrSessionClosed)
	return nil
}

// Abandon stops a session whose host went away. The lock is left set, so the
// attempt stays visible upstream as forfeited. A session already finishing
// is left to complete.
func (s *Session) Abandon() {
	s.mu.Lock()
	if s.closed || s.state == StateFinishing {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTicker()
	state := s.state
	s.mu.Unlock()

	s.log.Warn().Str("state", string(state)).Msg("Session abandoned, lock kept")
	s.terminate(nil, ErrSessionClosed)
}

// ─── Internal transitions (mu held) ─────────────────────────────────

func (s *Session) onCountdownTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.tickGen || s.closed || s.state != StateCountdown {
		return
	}

	s.countdown--
	s.emit(Event{Type: EventCountdown, Seconds: s.countdown})
	if s.countdown <= 0 {
		s.enterExam()
	}
}

func (s *Session) enterExam() {
	s.stopTicker()
	s.state = StateExam
	s.countdown = 0
	s.publishState()

	d := Navigate(s.questions, s.answers, s.timers.Snapshot(), -1)
	if d.Kind == DecisionComplete {
		s.beginFinishing()
		return
	}
	s.activate(d.Index)
}

// activate shows question i and binds the one-second timer to it.
func (s *Session) activate(i int) {
	s.position = i
	q := s.questions[i]
	view := q.ForExaminee()

	s.emit(Event{
		Type:     EventQuestion,
		Index:    i,
		Total:    len(s.questions),
		Seconds:  s.timers.Remaining(q.ID),
		Playable: s.playableCount(),
		Question: &view,
	})

	id := q.ID
	s.startTicker(func(gen uint64) { s.onQuestionTick(gen, id) })
}

func (s *Session) onQuestionTick(gen uint64, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.tickGen || s.closed || s.state != StateExam {
		return
	}

	left := s.timers.Tick(id)
	s.emit(Event{Type: EventTick, Index: s.position, Seconds: left})
	if left > 0 {
		return
	}

	s.stopTicker()
	if s.playableCount() > 0 {
		s.emit(Event{Type: EventAdvisory, Message: "Time is up. Moving to the next question."})
	} else {
		s.emit(Event{Type: EventAdvisory, Message: "Session time is over."})
	}
	s.navigate()
}

func (s *Session) navigate() {
	d := Navigate(s.questions, s.answers, s.timers.Snapshot(), s.position)
	switch d.Kind {
	case DecisionComplete:
		s.beginFinishing()
	case DecisionMove:
		if d.Revisit {
			s.emit(Event{
				Type:    EventAdvisory,
				Index:   d.Index,
				Message: fmt.Sprintf("Returning to skipped questions (question %d).", d.Index+1),
			})
		}
		s.activate(d.Index)
	case DecisionStay:
		// The current question is the only one left and keeps ticking.
	}
}

func (s *Session) beginFinishing() {
	s.stopTicker()
	s.state = StateFinishing
	s.publishState()

	answers := make(map[string]model.Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}
	go s.finish(s.questions, answers)
}

func (s *Session) startTicker(fn func(gen uint64)) {
	s.stopTicker()
	gen := s.tickGen
	s.cancelTick = s.deps.Scheduler.Every(time.Second, func() { fn(gen) })
}

// stopTicker cancels the active task and invalidates ticks already in flight.
func (s *Session) stopTicker() {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	s.tickGen++
}

func (s *Session) playable(id string) bool {
	return s.answers[id].Value == "" && !s.timers.Expired(id)
}

func (s *Session) playableCount() int {
	n := 0
	for _, q := range s.questions {
		if s.playable(q.ID) {
			n++
		}
	}
	return n
}

func (s *Session) publishState() {
	s.emit(Event{Type: EventState, Total: len(s.questions)})
}

func (s *Session) emit(e Event) {
	e.State = s.state
	s.deps.Sink.Publish(e)
}

// ─── Finishing ──────────────────────────────────────────────────────

// finish scores the attempt, persists it, clears the lock and hands the
// report to the notifier, in that order.
func (s *Session) finish(seq []model.Question, answers map[string]model.Answer) {
	card := ScoreAttempt(seq, answers, s.policy)
	result := &model.ExamResult{
		ID:           uuid.New(),
		Examinee:     s.examinee,
		Score:        card.Score,
		Passed:       card.Passed,
		CorrectCount: card.Correct,
		TotalCount:   card.Total,
		TakenAt:      s.deps.Now().UTC(),
		AnswersLog:   card.Log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.deps.StoreTimeout)
	defer cancel()

	prior := s.priorFailures
	if n, err := s.deps.Results.CountFailures(ctx, s.examinee.Email); err != nil {
		s.log.Warn().Err(err).Msg("Recount failures failed, using count from session open")
	} else {
		prior = n
	}
	failureCount := prior
	if !result.Passed {
		failureCount++
	}

	if err := s.deps.Results.Append(ctx, result); err != nil {
		s.log.Error().Err(err).Msg("Persist result failed, session lock kept")
		s.terminate(nil, fmt.Errorf("persist result: %w", err))
		return
	}

	if err := s.deps.Locks.Release(ctx, s.examinee.Email); err != nil {
		s.log.Error().Err(err).Msg("Release session lock failed")
	}

	if s.deps.Notifier != nil {
		go s.notify(model.Report{Result: *result, PriorFailures: prior, FailureCount: failureCount})
	}

	s.log.Info().
		Str("result_id", result.ID.String()).
		Int("score", result.Score).
		Bool("passed", result.Passed).
		Int("failure_count", failureCount).
		Msg("Exam finished")

	s.terminate(result, nil)
}

func (s *Session) notify(report model.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), s.deps.StoreTimeout)
	defer cancel()

	if err := s.deps.Notifier.Notify(ctx, report); err != nil {
		s.log.Warn().Err(err).Str("result_id", report.Result.ID.String()).Msg("Notification failed")
	}
}

func (s *Session) terminate(result *model.ExamResult, err error) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	s.terminated = true
	s.result, s.err = result, err

	switch {
	case result != nil:
		s.emit(Event{Type: EventCompleted, Result: result})
	case !errors.Is(err, ErrSessionClosed):
		s.emit(Event{Type: EventError, Err: err})
	}
	s.mu.Unlock()

	close(s.done)
}
