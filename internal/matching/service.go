package matching

import (
	"context"
	"time"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/models"
)

// SimulationVersion labels proposed configs that carry no version of their own.
const SimulationVersion = "simulation"

// OpportunitySource returns a read-only requirements snapshot.
type OpportunitySource interface {
	GetOpportunity(ctx context.Context, id string) (*models.OpportunityRequirements, error)
}

// CandidateSource returns the candidate population matching a filter.
type CandidateSource interface {
	FindCandidates(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateProfile, error)
}

// ResultPublisher announces finished runs to downstream consumers.
type ResultPublisher interface {
	PublishMatchingCompleted(ctx context.Context, result *models.MatchResult) error
}

// Service loads snapshots from the collaborators and runs the engine.
type Service struct {
	engine         *Engine
	opportunities  OpportunitySource
	candidates     CandidateSource
	publisher      ResultPublisher
	defaultVersion string
	logger         logger.Logger
}

// NewService wires the engine to its collaborators. publisher may be nil.
func NewService(
	engine *Engine,
	opportunities OpportunitySource,
	candidates CandidateSource,
	publisher ResultPublisher,
	defaultVersion string,
	log logger.Logger,
) *Service {
	return &Service{
		engine:         engine,
		opportunities:  opportunities,
		candidates:     candidates,
		publisher:      publisher,
		defaultVersion: defaultVersion,
		logger:         log.WithFields(map[string]interface{}{"component": "matching-service"}),
	}
}

// MatchOpportunity runs matching for a stored opportunity with the given
// config version and announces the result.
func (s *Service) MatchOpportunity(ctx context.Context, opportunityID, version string) *models.MatchResult {
	if version == "" {
		version = s.defaultVersion
	}

	result := s.run(ctx, opportunityID, RunRequest{AlgorithmVersion: version})
	s.publish(ctx, result)
	return result
}

// Simulate scores a stored opportunity with a proposed config. Simulations
// are never announced.
func (s *Service) Simulate(ctx context.Context, opportunityID string, cfg models.ScoringConfig) *models.MatchResult {
	if cfg.AlgorithmVersion == "" {
		cfg.AlgorithmVersion = SimulationVersion
	}
	return s.run(ctx, opportunityID, RunRequest{AlgorithmVersion: cfg.AlgorithmVersion, Config: &cfg})
}

// Evaluate runs the engine over caller-supplied snapshots.
func (s *Service) Evaluate(ctx context.Context, req RunRequest) *models.MatchResult {
	if req.Config == nil && req.AlgorithmVersion == "" {
		req.AlgorithmVersion = s.defaultVersion
	}
	return s.engine.Run(ctx, req)
}

func (s *Service) run(ctx context.Context, opportunityID string, req RunRequest) *models.MatchResult {
	started := time.Now()

	opp, err := s.opportunities.GetOpportunity(ctx, opportunityID)
	if err != nil {
		if _, ok := apperrors.AsStandardError(err); !ok {
			err = apperrors.NewQueryExecutionFailedError(string(models.QueryTypeOpportunity), err)
		}
		return s.engine.Fail(ctx, opportunityID, req.AlgorithmVersion, started, err)
	}

	filter := models.FilterFor(opp)
	candidates, err := s.candidates.FindCandidates(ctx, filter)
	if err != nil {
		return s.engine.Fail(ctx, opportunityID, req.AlgorithmVersion, started,
			apperrors.NewCandidateQueryFailedError(err))
	}

	s.logger.Debug("snapshots loaded", map[string]interface{}{
		"opportunityId": opportunityID,
		"candidates":    len(candidates),
		"loadMs":        time.Since(started).Milliseconds(),
	})

	req.Opportunity = opp
	req.Candidates = candidates
	return s.engine.Run(ctx, req)
}

func (s *Service) publish(ctx context.Context, result *models.MatchResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMatchingCompleted(ctx, result); err != nil {
		s.logger.Error("failed to publish matching completed event", map[string]interface{}{
			"matchResultId": result.ID,
			"opportunityId": result.OpportunityID,
			"error":         err.Error(),
		})
	}
}
