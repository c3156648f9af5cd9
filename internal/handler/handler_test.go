package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stratton-prime/certexam-backend/internal/exam"
	"github.com/stratton-prime/certexam-backend/internal/response"
	"github.com/stratton-prime/certexam-backend/internal/service"
)

func TestSessionErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{exam.ErrSessionActive, http.StatusConflict, response.ErrSessionActive},
		{service.ErrSessionLive, http.StatusConflict, response.ErrSessionLive},
		{exam.ErrAlreadyPassed, http.StatusConflict, response.ErrAlreadyPassed},
		{exam.ErrAttemptsExhausted, http.StatusForbidden, response.ErrAttemptsExhausted},
		{exam.ErrEmptyQuestionSet, http.StatusServiceUnavailable, response.ErrNoQuestions},
		{exam.ErrInvalidTransition, http.StatusConflict, response.ErrInvalidAction},
		{exam.ErrQuestionNotPlayable, http.StatusConflict, response.ErrQuestionClosed},
		{fmt.Errorf("acquire: %w", exam.ErrSessionActive), http.StatusConflict, response.ErrSessionActive},
		{fmt.Errorf("redis down"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		status, code := sessionErrorStatus(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("sessionErrorStatus(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "0m 42s"},
		{3*time.Hour + 5*time.Minute, "3h 5m 0s"},
		{26*time.Hour + time.Second, "1d 2h 0m 1s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestParseMemInfoValue(t *testing.T) {
	if got := parseMemInfoValue("VmRSS:\t   2048 kB"); got != 2048*1024 {
		t.Errorf("got %d", got)
	}
	if got := parseMemInfoValue("garbage"); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}
