package exam

import "github.com/stratton-prime/certexam-backend/internal/model"

// DecisionKind is the outcome of a navigation step.
type DecisionKind int

const (
	// DecisionStay keeps the current question on screen.
	DecisionStay DecisionKind = iota
	// DecisionMove switches to Decision.Index.
	DecisionMove
	// DecisionComplete ends the exam: nothing is playable any more.
	DecisionComplete
)

// Decision is what the navigation policy wants to happen next.
type Decision struct {
	Kind  DecisionKind
	Index int
	// Revisit is set when the sweep wrapped around to a skipped question.
	Revisit bool
}

// Playable reports whether a question can still be answered: no recorded
// answer and time left. A question without a timer entry counts as having time.
func Playable(id string, answers map[string]model.Answer, timers map[string]int) bool {
	if answers[id].Value != "" {
		return false
	}
	left, ok := timers[id]
	return !ok || left > 0
}

// Navigate runs the two-wave sweep: the first playable question after the
// current position, otherwise the first playable question overall.
func Navigate(seq []model.Question, answers map[string]model.Answer, timers map[string]int, current int) Decision {
	first := -1
	for i, q := range seq {
		if !Playable(q.ID, answers, timers) {
			continue
		}
		if first < 0 {
			first = i
		}
		if i > current {
			return Decision{Kind: DecisionMove, Index: i}
		}
	}

	switch {
	case first < 0:
		return Decision{Kind: DecisionComplete, Index: current}
	case first == current:
		return Decision{Kind: DecisionStay, Index: current}
	default:
		return Decision{Kind: DecisionMove, Index: first, Revisit: true}
	}
}
