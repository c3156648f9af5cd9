package handler

import (
	"errors"
	"net/http"

	"github.com/stratton-prime/certexam-backend/internal/exam"
	"github.com/stratton-prime/certexam-backend/internal/response"
	"github.com/stratton-prime/certexam-backend/internal/service"
)

// sessionErrorStatus maps session errors onto HTTP status and error code.
func sessionErrorStatus(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, exam.ErrSessionActive):
		return http.StatusConflict, response.ErrSessionActive
	case errors.Is(err, service.ErrSessionLive):
		return http.StatusConflict, response.ErrSessionLive
	case errors.Is(err, exam.ErrAlreadyPassed):
		return http.StatusConflict, response.ErrAlreadyPassed
	case errors.Is(err, exam.ErrAttemptsExhausted):
		return http.StatusForbidden, response.ErrAttemptsExhausted
	case errors.Is(err, exam.ErrEmptyQuestionSet):
		return http.StatusServiceUnavailable, response.ErrNoQuestions
	case errors.Is(err, exam.ErrInvalidTransition):
		return http.StatusConflict, response.ErrInvalidAction
	case errors.Is(err, exam.ErrQuestionNotPlayable):
		return http.StatusConflict, response.ErrQuestionClosed
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}
