package model

import (
	"time"

	"github.com/google/uuid"
)

// Examinee identifies the person taking the exam and where reports are routed.
type Examinee struct {
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	HierarchicalID string `json:"hierarchical_id"`
	ManagerName    string `json:"manager_name,omitempty"`
	ManagerEmail   string `json:"manager_email,omitempty"`
}

// AnswerLogEntry is the audit record of one graded question.
type AnswerLogEntry struct {
	QuestionID    string       `json:"question_id"`
	QuestionText  string       `json:"question_text"`
	Type          QuestionType `json:"type"`
	UserAnswer    string       `json:"user_answer"`
	Justification string       `json:"justification,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	IsCorrect     bool         `json:"is_correct"`
}

// ExamResult is the immutable outcome of one completed attempt.
type ExamResult struct {
	ID           uuid.UUID        `json:"id"`
	Examinee     Examinee         `json:"examinee"`
	Score        int              `json:"score"`
	Passed       bool             `json:"passed"`
	CorrectCount int              `json:"correct_count"`
	TotalCount   int              `json:"total_count"`
	TakenAt      time.Time        `json:"taken_at"`
	AnswersLog   []AnswerLogEntry `json:"answers_log"`
}

// Report is the payload handed to the notification service after a result is persisted.
type Report struct {
	Result        ExamResult `json:"result"`
	PriorFailures int        `json:"prior_failures"`
	FailureCount  int        `json:"failure_count"`
}

// ResultStats summarises stored results for the dashboard.
type ResultStats struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// ExamineeStatus describes an identity's standing before a new attempt.
type ExamineeStatus struct {
	Email         string `json:"email"`
	LockHeld      bool   `json:"lock_held"`
	LiveSession   bool   `json:"live_session"`
	PriorFailures int    `json:"prior_failures"`
	Passed        bool   `json:"passed"`
}

// ReportNotification is the queued form of a Report. Attempts counts failed
// deliveries so far.
type ReportNotification struct {
	Report   Report `json:"report"`
	Attempts int    `json:"attempts"`
}
