package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/model"
	"github.com/stratton-prime/certexam-backend/internal/response"
	"github.com/stratton-prime/certexam-backend/internal/service"
	"github.com/stratton-prime/certexam-backend/internal/validator"
)

// AdminHandler handles the operator endpoints: results, locks, the question
// bank and token issuance.
type AdminHandler struct {
	resultService  *service.ResultService
	sessionService *service.ExamSessionService
	bankService    *service.QuestionBankService
	authService    *service.AuthService
	log            zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	resultService *service.ResultService,
	sessionService *service.ExamSessionService,
	bankService *service.QuestionBankService,
	authService *service.AuthService,
	log zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		resultService:  resultService,
		sessionService: sessionService,
		bankService:    bankService,
		authService:    authService,
		log:            log.With().Str("component", "admin_handler").Logger(),
	}
}

// ListResults godoc
// GET /api/v1/admin/results?page=&per_page=&email=&passed=
func (h *AdminHandler) ListResults(c *gin.Context) {
	var q model.ListResultsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	results, pagination, err := h.resultService.List(c.Request.Context(), q.Page, q.PerPage, q.Email, q.Passed)
	if err != nil {
		h.log.Error().Err(err).Msg("List results failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// ResultStats godoc
// GET /api/v1/admin/results/stats
func (h *AdminHandler) ResultStats(c *gin.Context) {
	stats, err := h.resultService.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Result stats failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"stats":         stats,
		"live_sessions": h.sessionService.LiveCount(),
	})
}

// GetExamineeStatus godoc
// GET /api/v1/admin/examinees/status?email=
func (h *AdminHandler) GetExamineeStatus(c *gin.Context) {
	var req model.ReleaseLockRequest
	if fields := validator.BindQuery(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	status, err := h.sessionService.Status(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": status})
}

// ReleaseLock godoc
// POST /api/v1/admin/sessions/release
// Clears the lock an abandoned attempt left behind so the examinee can retry.
func (h *AdminHandler) ReleaseLock(c *gin.Context) {
	var req model.ReleaseLockRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.ReleaseLock(c.Request.Context(), req.Email); err != nil {
		status, code := sessionErrorStatus(err)
		if code == response.ErrInternal {
			h.log.Error().Err(err).Str("email", req.Email).Msg("Release lock failed")
		}
		response.Fail(c, status, code)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "session lock released"})
}

// ImportQuestions godoc
// POST /api/v1/admin/questions/import
// Upserts questions by id and refreshes the cached bank.
func (h *AdminHandler) ImportQuestions(c *gin.Context) {
	var req model.ImportQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for _, in := range req.Questions {
		questions = append(questions, in.ToQuestion())
	}

	if err := h.bankService.Import(c.Request.Context(), questions); err != nil {
		h.log.Error().Err(err).Msg("Question import failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"imported": len(questions)})
}

// IssueExamineeToken godoc
// POST /api/v1/admin/tokens/examinee
func (h *AdminHandler) IssueExamineeToken(c *gin.Context) {
	var req model.IssueExamineeTokenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.authService.IssueExamineeToken(req.Examinee())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"token": token})
}
