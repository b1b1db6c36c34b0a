package simulatescoringconfig

import "expert-matching/internal/models"

type Input struct {
	OpportunityID string                `json:"opportunityId"`
	ScoringConfig *models.ScoringConfig `json:"scoringConfig"`
}

type Output struct {
	MatchResult *models.MatchResult
}

func (o *Output) Variables() map[string]interface{} {
	return map[string]interface{}{
		"simulationResult":    o.MatchResult,
		"simulationStatus":    string(o.MatchResult.Status),
		"recommendationCount": len(o.MatchResult.Recommendations),
		"topCandidateIds":     o.MatchResult.TopCandidateIDs(len(o.MatchResult.Recommendations)),
	}
}
