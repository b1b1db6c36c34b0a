package simulatescoringconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/common/metrics"
	"expert-matching/internal/common/validation"
	"expert-matching/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "simulate-scoring-config"

// Service previews a proposed scoring configuration. Simulations are never
// announced downstream.
type Service interface {
	Simulate(ctx context.Context, opportunityID string, cfg models.ScoringConfig) *models.MatchResult
}

type Handler struct {
	config     *Config
	service    Service
	validator  *validation.SchemaValidator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(cfg *Config, service Service, validator *validation.SchemaValidator, log logger.Logger) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     cfg,
		service:    service,
		validator:  validator,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return err
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromMap(output.Variables())
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result := h.service.Simulate(ctx, input.OpportunityID, *input.ScoringConfig)
	output := &Output{MatchResult: result}
	if result.Failed() {
		return output, errors.FromCode(errors.ErrorCode(result.ErrorCode), result.ErrorMessage, "").
			WithMetadata("opportunityId", result.OpportunityID).
			WithMetadata("simulation", true)
	}

	h.logger.Info("scoring config simulated", map[string]interface{}{
		"opportunityId":   result.OpportunityID,
		"proposedVersion": result.AlgorithmVersion,
		"recommendations": len(result.Recommendations),
	})
	return output, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputValidationFailedError(fmt.Sprintf("failed to parse job variables: %v", err))
	}

	if h.validator != nil {
		result, err := h.validator.ValidateInput(TaskType, variables)
		if err != nil {
			return nil, errors.NewInputValidationFailedError(err.Error())
		}
		if !result.Valid {
			return nil, errors.NewInputValidationFailedError(result.Summary())
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInputValidationFailedError(fmt.Sprintf("failed to decode job variables: %v", err))
	}
	if input.OpportunityID == "" || input.ScoringConfig == nil {
		return nil, errors.NewInputValidationFailedError("opportunityId and scoringConfig are required")
	}
	return &input, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}
