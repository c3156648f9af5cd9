package websocket

import "github.com/stratton-prime/certexam-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart  Action = "start"
	ActionSubmit Action = "submit"
	ActionSkip   Action = "skip"
	ActionPing   Action = "ping"
)

// ActionRequest carries every client action. QID names the question the
// client is looking at; answers for any other question are rejected.
type ActionRequest struct {
	Action        Action `json:"action"`
	QID           string `json:"q_id,omitempty"`
	Answer        string `json:"ans,omitempty"`
	Justification string `json:"justification,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventIntro     Event = "intro"
	EventState     Event = "state"
	EventCountdown Event = "countdown"
	EventQuestion  Event = "question"
	EventTick      Event = "tick"
	EventAdvisory  Event = "advisory"
	EventCompleted Event = "completed"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// IntroResponse is sent once after the session opened.
type IntroResponse struct {
	Event            Event  `json:"event"`
	SessionID        string `json:"session_id"`
	Total            int    `json:"total"`
	QuestionSeconds  int    `json:"question_seconds"`
	CountdownSeconds int    `json:"countdown_seconds"`
	PassThreshold    int    `json:"pass_threshold"`
}

type StateResponse struct {
	Event Event  `json:"event"`
	State string `json:"state"`
	Total int    `json:"total"`
}

type CountdownResponse struct {
	Event   Event `json:"event"`
	Seconds int   `json:"seconds"`
}

type QuestionResponse struct {
	Event     Event                      `json:"event"`
	Index     int                        `json:"index"`
	Total     int                        `json:"total"`
	Remaining int                        `json:"remaining"`
	Playable  int                        `json:"playable"`
	Question  *model.QuestionForExaminee `json:"question"`
}

type TickResponse struct {
	Event     Event `json:"event"`
	Index     int   `json:"index"`
	Remaining int   `json:"remaining"`
}

type AdvisoryResponse struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
}

// CompletedResponse reports the persisted outcome. The answer log stays on
// the server and in the emailed report.
type CompletedResponse struct {
	Event        Event  `json:"event"`
	ResultID     string `json:"result_id"`
	Score        int    `json:"score"`
	Passed       bool   `json:"passed"`
	CorrectCount int    `json:"correct_count"`
	TotalCount   int    `json:"total_count"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
