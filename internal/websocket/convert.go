package websocket

import (
	"github.com/stratton-prime/certexam-backend/internal/exam"
	"github.com/stratton-prime/certexam-backend/internal/response"
)

// FromSessionEvent maps an engine event to its wire frame.
func FromSessionEvent(e exam.Event) interface{} {
	switch e.Type {
	case exam.EventState:
		return StateResponse{Event: EventState, State: string(e.State), Total: e.Total}
	case exam.EventCountdown:
		return CountdownResponse{Event: EventCountdown, Seconds: e.Seconds}
	case exam.EventQuestion:
		return QuestionResponse{
			Event:     EventQuestion,
			Index:     e.Index,
			Total:     e.Total,
			Remaining: e.Seconds,
			Playable:  e.Playable,
			Question:  e.Question,
		}
	case exam.EventTick:
		return TickResponse{Event: EventTick, Index: e.Index, Remaining: e.Seconds}
	case exam.EventAdvisory:
		return AdvisoryResponse{Event: EventAdvisory, Message: e.Message}
	case exam.EventCompleted:
		if e.Result == nil {
			return nil
		}
		return CompletedResponse{
			Event:        EventCompleted,
			ResultID:     e.Result.ID.String(),
			Score:        e.Result.Score,
			Passed:       e.Result.Passed,
			CorrectCount: e.Result.CorrectCount,
			TotalCount:   e.Result.TotalCount,
		}
	case exam.EventError:
		// The cause is logged by the session; clients only learn the outcome.
		return ErrorResponse{
			Event: EventError,
			Code:  string(response.ErrSessionFailed),
			Error: response.GetMessage(response.ErrSessionFailed),
		}
	default:
		return nil
	}
}
