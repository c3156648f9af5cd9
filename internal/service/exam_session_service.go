package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/exam"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

// ErrSessionLive is returned when releasing the lock of a session this
// process is still running.
var ErrSessionLive = errors.New("session is still running on this server")

// BankSource supplies the question bank a session draws from.
type BankSource interface {
	Bank(ctx context.Context) ([]model.Question, error)
}

// SessionLocks is a LockStore that can also be queried.
type SessionLocks interface {
	exam.LockStore
	Held(ctx context.Context, identity string) (bool, error)
}

// ExamSessionService opens exam sessions and tracks the ones running in this
// process.
type ExamSessionService struct {
	bank      BankSource
	locks     SessionLocks
	results   exam.ResultStore
	notifier  exam.Notifier
	policy    exam.Policy
	scheduler exam.Scheduler
	log       zerolog.Logger

	mu   sync.Mutex
	live map[string]*exam.Session
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(
	bank BankSource,
	locks SessionLocks,
	results exam.ResultStore,
	notifier exam.Notifier,
	policy exam.Policy,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		bank:      bank,
		locks:     locks,
		results:   results,
		notifier:  notifier,
		policy:    policy,
		scheduler: exam.TickerScheduler{},
		log:       log.With().Str("component", "session_service").Logger(),
		live:      make(map[string]*exam.Session),
	}
}

// Policy returns the policy new sessions run under.
func (s *ExamSessionService) Policy() exam.Policy { return s.policy }

// Open starts a session in INTRO for the examinee. Events go to sink.
func (s *ExamSessionService) Open(ctx context.Context, examinee model.Examinee, sink exam.EventSink) (*exam.Session, error) {
	bank, err := s.bank.Bank(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	sess, err := exam.Open(ctx, examinee, bank, s.policy, exam.Deps{
		Locks:     s.locks,
		Results:   s.results,
		Notifier:  s.notifier,
		Scheduler: s.scheduler,
		Sink:      sink,
		Log:       s.log,
	})
	if err != nil {
		return nil, err
	}

	email := sess.Examinee().Email
	s.mu.Lock()
	s.live[email] = sess
	s.mu.Unlock()

	go func() {
		<-sess.Done()
		s.mu.Lock()
		if s.live[email] == sess {
			delete(s.live, email)
		}
		s.mu.Unlock()
	}()

	return sess, nil
}

// Detach is called when the examinee's connection goes away. A session still
// in INTRO never started and gives its lock back; anything later is
// abandoned with the lock kept, which forfeits the attempt.
func (s *ExamSessionService) Detach(ctx context.Context, sess *exam.Session) {
	if sess.State() == exam.StateIntro {
		err := sess.Abort(ctx)
		if err == nil {
			return
		}
		if !errors.Is(err, exam.ErrInvalidTransition) {
			s.log.Error().Err(err).Str("email", sess.Examinee().Email).Msg("Failed to release lock of unstarted session")
			return
		}
	}
	sess.Abandon()
}

// Status reports an identity's standing.
func (s *ExamSessionService) Status(ctx context.Context, email string) (model.ExamineeStatus, error) {
	email = exam.NormalizeIdentity(email)
	st := model.ExamineeStatus{Email: email}

	var err error
	if st.LockHeld, err = s.locks.Held(ctx, email); err != nil {
		return st, err
	}
	if st.PriorFailures, err = s.results.CountFailures(ctx, email); err != nil {
		return st, fmt.Errorf("count failures: %w", err)
	}
	if st.Passed, err = s.results.HasPassed(ctx, email); err != nil {
		return st, fmt.Errorf("check passed: %w", err)
	}

	s.mu.Lock()
	_, st.LiveSession = s.live[email]
	s.mu.Unlock()
	return st, nil
}

// ReleaseLock clears a stale lock left by an abandoned attempt.
func (s *ExamSessionService) ReleaseLock(ctx context.Context, email string) error {
	email = exam.NormalizeIdentity(email)

	s.mu.Lock()
	_, running := s.live[email]
	s.mu.Unlock()
	if running {
		return ErrSessionLive
	}

	if err := s.locks.Release(ctx, email); err != nil {
		return fmt.Errorf("release session lock: %w", err)
	}
	s.log.Info().Str("email", email).Msg("Session lock released by admin")
	return nil
}

// LiveCount returns the number of sessions running in this process.
func (s *ExamSessionService) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Shutdown abandons every live session. Sessions already finishing are left
// to persist their result.
func (s *ExamSessionService) Shutdown() {
	s.mu.Lock()
	sessions := make([]*exam.Session, 0, len(s.live))
	for _, sess := range s.live {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Abandon()
	}
	if len(sessions) > 0 {
		s.log.Warn().Int("sessions", len(sessions)).Msg("Live sessions abandoned on shutdown")
	}
}
