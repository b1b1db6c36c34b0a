package api

import (
	"context"
	"net/http"
	"time"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/matching"
	"expert-matching/internal/models"
	"expert-matching/internal/scoringconfig"

	"github.com/gin-gonic/gin"
)

const defaultReadyTimeout = 2 * time.Second

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

type MatchRequest struct {
	AlgorithmVersion string `json:"algorithmVersion"`
}

type EvaluateRequest struct {
	Opportunity      *models.OpportunityRequirements `json:"opportunity" binding:"required"`
	Candidates       []models.CandidateProfile       `json:"candidates"`
	AlgorithmVersion string                          `json:"algorithmVersion"`
	ScoringConfig    *models.ScoringConfig           `json:"scoringConfig"`
}

type Handler struct {
	service      MatchingService
	configs      scoringconfig.Provider
	checks       []ReadinessCheck
	readyTimeout time.Duration
	logger       logger.Logger
}

func NewHandler(deps Dependencies) *Handler {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	timeout := deps.ReadyTimeout
	if timeout <= 0 {
		timeout = defaultReadyTimeout
	}
	return &Handler{
		service:      deps.Service,
		configs:      deps.Configs,
		checks:       deps.Checks,
		readyTimeout: timeout,
		logger:       log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "expert-matching",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck probes every dependency and reports 503 if any is down.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.readyTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Probe(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[check.Name] = err.Error()
			continue
		}
		results[check.Name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}

// MatchOpportunity handles POST /api/v1/opportunities/:id/matches
func (h *Handler) MatchOpportunity(c *gin.Context) {
	var req MatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.AlgorithmVersion == "" {
		req.AlgorithmVersion = c.Query("version")
	}

	result := h.service.MatchOpportunity(c.Request.Context(), c.Param("id"), req.AlgorithmVersion)
	h.writeResult(c, result)
}

// SimulateScoringConfig handles POST /api/v1/opportunities/:id/matches/simulate
func (h *Handler) SimulateScoringConfig(c *gin.Context) {
	var cfg models.ScoringConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, err)
		return
	}

	result := h.service.Simulate(c.Request.Context(), c.Param("id"), cfg)
	h.writeResult(c, result)
}

// EvaluateSnapshot handles POST /api/v1/matches/evaluate
func (h *Handler) EvaluateSnapshot(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	for i := range req.Candidates {
		if err := req.Candidates[i].Validate(); err != nil {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "Invalid candidate profile",
				Code:    string(apperrors.ErrCodeInputValidationFailed),
				Details: err.Error(),
			})
			return
		}
	}

	result := h.service.Evaluate(c.Request.Context(), matching.RunRequest{
		Opportunity:      req.Opportunity,
		Candidates:       req.Candidates,
		AlgorithmVersion: req.AlgorithmVersion,
		Config:           req.ScoringConfig,
	})
	h.writeResult(c, result)
}

// GetScoringConfig handles GET /api/v1/scoring-configs/:version
func (h *Handler) GetScoringConfig(c *gin.Context) {
	cfg, err := h.configs.Get(c.Request.Context(), c.Param("version"))
	if err != nil {
		stdErr := apperrors.Normalize(err)
		c.JSON(StatusForCode(stdErr.Code), ErrorResponse{
			Error:   stdErr.Message,
			Code:    string(stdErr.Code),
			Details: stdErr.Details,
		})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) writeResult(c *gin.Context, result *models.MatchResult) {
	status := http.StatusOK
	if result.Failed() {
		status = StatusForCode(apperrors.ErrorCode(result.ErrorCode))
		h.logger.Debug("matching run failed", map[string]interface{}{
			"opportunityId": result.OpportunityID,
			"errorCode":     result.ErrorCode,
			"requestId":     GetRequestID(c),
		})
	}
	c.JSON(status, result)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Code:    string(apperrors.ErrCodeInputValidationFailed),
		Details: err.Error(),
	})
}

// StatusForCode maps an error code to the HTTP status of the response.
func StatusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeOpportunityNotFound, apperrors.ErrCodeConfigNotFound, apperrors.ErrCodeIndexNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeOpportunityInvalid, apperrors.ErrCodeConfiguration,
		apperrors.ErrCodeInputValidationFailed:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeMatchingTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeMatchingCancelled:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeCandidateQueryFailed, apperrors.ErrCodeQueryExecutionFailed, apperrors.ErrCodeConfigQueryFailed,
		apperrors.ErrCodeDatabaseConnectionFailed, apperrors.ErrCodeSearchQueryFailed,
		apperrors.ErrCodeElasticsearchConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
