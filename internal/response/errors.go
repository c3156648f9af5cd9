package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrExamineeAccessOnly ErrCode = "EXAMINEE_ACCESS_ONLY"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrSessionActive     ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionLive       ErrCode = "SESSION_LIVE"
	ErrAlreadyPassed     ErrCode = "ALREADY_PASSED"
	ErrAttemptsExhausted ErrCode = "ATTEMPTS_EXHAUSTED"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"
	ErrInvalidAction     ErrCode = "INVALID_ACTION"
	ErrQuestionClosed    ErrCode = "QUESTION_NOT_PLAYABLE"
	ErrSessionFailed     ErrCode = "SESSION_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrExamineeAccessOnly:
		return "This resource is restricted to examinees."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrSessionActive:
		return "An exam is already in progress for this account."
	case ErrSessionLive:
		return "The exam is still running and its lock cannot be released."
	case ErrAlreadyPassed:
		return "This account has already passed the certification exam."
	case ErrAttemptsExhausted:
		return "The maximum number of failed attempts has been reached."
	case ErrNoQuestions:
		return "The question bank is empty. The exam cannot start."
	case ErrInvalidAction:
		return "This action is not allowed at the current stage of the exam."
	case ErrQuestionClosed:
		return "This question has already been answered or its time is up."
	case ErrSessionFailed:
		return "The exam result could not be saved. Please contact the exam administrator."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
