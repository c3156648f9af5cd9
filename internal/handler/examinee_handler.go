package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stratton-prime/certexam-backend/internal/middleware"
	"github.com/stratton-prime/certexam-backend/internal/response"
	"github.com/stratton-prime/certexam-backend/internal/service"
)

// ExamineeHandler serves the examinee's own REST endpoints.
type ExamineeHandler struct {
	sessionService *service.ExamSessionService
}

// NewExamineeHandler creates a new ExamineeHandler.
func NewExamineeHandler(sessionService *service.ExamSessionService) *ExamineeHandler {
	return &ExamineeHandler{sessionService: sessionService}
}

// GetStatus godoc
// GET /api/v1/examinee/status
// Reports whether the caller may open a session, plus the exam parameters.
func (h *ExamineeHandler) GetStatus(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	status, err := h.sessionService.Status(c.Request.Context(), claims.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	policy := h.sessionService.Policy()
	canStart := !status.LockHeld && (!status.Passed || policy.AllowRetakeAfterPass)
	if policy.MaxFailedAttempts > 0 && status.PriorFailures >= policy.MaxFailedAttempts {
		canStart = false
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":    status,
		"can_start": canStart,
		"exam": gin.H{
			"question_seconds":  policy.QuestionSeconds,
			"countdown_seconds": policy.CountdownSeconds,
			"pass_threshold":    policy.PassThreshold,
			"target_size":       policy.TargetSize,
		},
	})
}
