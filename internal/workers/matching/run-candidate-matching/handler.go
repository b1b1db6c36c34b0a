package runcandidatematching

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

const TaskType = "run-candidate-matching"

// Service runs a stored opportunity against the candidate pool.
type Service interface {
	MatchOpportunity(ctx context.Context, opportunityID, version string) *models.MatchResult
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

	if err := h.completeJob(ctx, client, job, output); err != nil {
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	return nil
}

// Execute runs the match. A failed run is returned as its StandardError
// alongside the output so callers can still inspect the result.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result := h.service.MatchOpportunity(ctx, input.OpportunityID, input.AlgorithmVersion)
	output := &Output{MatchResult: result}
	if result.Failed() {
		return output, errors.FromCode(errors.ErrorCode(result.ErrorCode), result.ErrorMessage, "").
			WithMetadata("matchResultId", result.ID).
			WithMetadata("opportunityId", result.OpportunityID)
	}

	h.logger.Info("candidate matching completed", map[string]interface{}{
		"opportunityId":    result.OpportunityID,
		"matchResultId":    result.ID,
		"algorithmVersion": result.AlgorithmVersion,
		"recommendations":  len(result.Recommendations),
		"processingTimeMs": result.ProcessingTimeMs,
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
	if input.OpportunityID == "" {
		return nil, errors.NewInputValidationFailedError("opportunityId is required")
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
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
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}
