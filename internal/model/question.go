package model

// QuestionType enumerates how a question is answered and graded.
type QuestionType string

const (
	QuestionTypeSingleChoice QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultiSelect  QuestionType = "MULTI_SELECT"
	QuestionTypeOpen         QuestionType = "OPEN"
)

// HasOptions reports whether questions of this type carry an option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultiSelect
}

// Category groups questions by subject matter.
type Category string

const (
	CategoryLaw   Category = "LAW"
	CategoryOther Category = "OTHER"
)

// AnswerDelimiter separates the tokens of a multi-select answer.
const AnswerDelimiter = "|"

// Question is a single entry of the question bank. The ID prefix encodes
// the exam part the question belongs to.
type Question struct {
	ID            string       `json:"id"`
	Category      Category     `json:"category"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	GradingHint   string       `json:"grading_hint,omitempty"`
}

// Clone returns a copy whose option slice can be reordered without touching the bank.
func (q Question) Clone() Question {
	if q.Options != nil {
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		q.Options = opts
	}
	return q
}

// QuestionForExaminee is a question without its expected answer, sent over the wire.
type QuestionForExaminee struct {
	ID       string       `json:"id"`
	Category Category     `json:"category"`
	Type     QuestionType `json:"type"`
	Text     string       `json:"text"`
	Options  []string     `json:"options,omitempty"`
}

// ForExaminee strips grading data from the question.
func (q Question) ForExaminee() QuestionForExaminee {
	return QuestionForExaminee{
		ID:       q.ID,
		Category: q.Category,
		Type:     q.Type,
		Text:     q.Text,
		Options:  q.Options,
	}
}

// Answer is the raw value captured for one question plus optional justification.
// An empty Value means unanswered.
type Answer struct {
	Value         string `json:"value"`
	Justification string `json:"justification,omitempty"`
}
