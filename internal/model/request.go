package model

// ReleaseLockRequest asks to clear a stale session lock.
type ReleaseLockRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

// ImportQuestionsRequest upserts a batch of bank questions.
type ImportQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// QuestionInput is one question as accepted by the import endpoint and the
// seed file.
type QuestionInput struct {
	ID            string       `json:"id" yaml:"id" binding:"required,max=64"`
	Category      Category     `json:"category" yaml:"category" binding:"required,oneof=LAW OTHER"`
	Type          QuestionType `json:"type" yaml:"type" binding:"required,oneof=SINGLE_CHOICE MULTI_SELECT OPEN"`
	Text          string       `json:"text" yaml:"text" binding:"required"`
	Options       []string     `json:"options" yaml:"options" binding:"required_unless=Type OPEN,dive,required"`
	CorrectAnswer string       `json:"correct_answer" yaml:"correct_answer" binding:"required_unless=Type OPEN"`
	GradingHint   string       `json:"grading_hint" yaml:"grading_hint"`
}

// ToQuestion converts the input into a bank entry.
func (in QuestionInput) ToQuestion() Question {
	q := Question{
		ID:            in.ID,
		Category:      in.Category,
		Type:          in.Type,
		Text:          in.Text,
		CorrectAnswer: in.CorrectAnswer,
		GradingHint:   in.GradingHint,
	}
	if in.Type.HasOptions() {
		q.Options = append([]string(nil), in.Options...)
	}
	return q
}

// IssueExamineeTokenRequest mints an access token for one examinee.
type IssueExamineeTokenRequest struct {
	Email          string `json:"email" binding:"required,email"`
	FullName       string `json:"full_name" binding:"required,max=200"`
	HierarchicalID string `json:"hierarchical_id" binding:"required,max=64"`
	ManagerName    string `json:"manager_name" binding:"omitempty,max=200"`
	ManagerEmail   string `json:"manager_email" binding:"omitempty,email"`
}

// Examinee returns the identity the token is issued for.
func (r IssueExamineeTokenRequest) Examinee() Examinee {
	return Examinee{
		Email:          r.Email,
		FullName:       r.FullName,
		HierarchicalID: r.HierarchicalID,
		ManagerName:    r.ManagerName,
		ManagerEmail:   r.ManagerEmail,
	}
}

// ListResultsQuery filters the admin result listing.
type ListResultsQuery struct {
	Page    int    `form:"page" json:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" json:"per_page" binding:"omitempty,min=1,max=100"`
	Email   string `form:"email" json:"email" binding:"omitempty,email"`
	Passed  *bool  `form:"passed" json:"passed"`
}
