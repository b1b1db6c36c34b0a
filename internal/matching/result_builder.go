package matching

import (
	"time"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/models"

	"github.com/google/uuid"
)

// ResultBuilder assembles the MatchResult for one run. Each result gets a
// fresh id; results are never updated after they are returned.
type ResultBuilder struct {
	opportunityID    string
	algorithmVersion string
	started          time.Time
}

func NewResultBuilder(opportunityID, algorithmVersion string, started time.Time) *ResultBuilder {
	return &ResultBuilder{
		opportunityID:    opportunityID,
		algorithmVersion: algorithmVersion,
		started:          started,
	}
}

// Completed wraps a ranked list. An empty list is still a completed run.
func (b *ResultBuilder) Completed(cfg *models.ScoringConfig, ranked RankOutcome, stats models.RunStatistics) *models.MatchResult {
	stats.CandidatesBelowThreshold = ranked.BelowThreshold
	stats.CandidatesTruncated = ranked.Truncated

	recs := ranked.Recommendations
	if recs == nil {
		recs = []models.Recommendation{}
	}

	result := b.base(cfg)
	result.Status = models.MatchStatusCompleted
	result.Statistics = stats
	result.Recommendations = recs
	return result
}

// Failed records an unrecoverable error. The recommendation list is always
// empty. cfg may be nil when the configuration could not be resolved.
func (b *ResultBuilder) Failed(cfg *models.ScoringConfig, err error, stats models.RunStatistics) *models.MatchResult {
	stdErr := apperrors.Normalize(err)

	result := b.base(cfg)
	result.Status = models.MatchStatusFailed
	result.ErrorCode = string(stdErr.Code)
	result.ErrorMessage = errorMessage(stdErr)
	result.Statistics = stats
	result.Recommendations = []models.Recommendation{}
	return result
}

func (b *ResultBuilder) base(cfg *models.ScoringConfig) *models.MatchResult {
	version := b.algorithmVersion
	if cfg != nil && cfg.AlgorithmVersion != "" {
		version = cfg.AlgorithmVersion
	}
	return &models.MatchResult{
		ID:                      uuid.NewString(),
		OpportunityID:           b.opportunityID,
		GeneratedAt:             time.Now().UTC(),
		AlgorithmVersion:        version,
		ConfigurationParameters: cfg,
		ProcessingTimeMs:        time.Since(b.started).Milliseconds(),
	}
}

func errorMessage(e *apperrors.StandardError) string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

// newRecommendation reports rounded sub-scores; the overall score is
// aggregated from the unrounded values.
func newRecommendation(candidateID string, scores SubScores, skills SkillsOutcome, langs LanguageOutcome, avail AvailabilityOutcome, cfg *models.ScoringConfig) models.Recommendation {
	return models.Recommendation{
		CandidateID:              candidateID,
		OverallMatchScore:        Aggregate(scores, cfg),
		SkillsMatchScore:         roundHalfUp(scores.Skills),
		AvailabilityMatchScore:   roundHalfUp(scores.Availability),
		LanguageMatchScore:       roundHalfUp(scores.Language),
		GeographicMatchScore:     roundHalfUp(scores.Geographic),
		MatchedSkills:            skills.Matched,
		UnmatchedSkills:          skills.Unmatched,
		MatchedLanguages:         langs.Matched,
		UnmatchedLanguages:       langs.Unmatched,
		AvailabilityConfirmation: avail.Confirmation,
	}
}
