package runcandidatematching

import "expert-matching/internal/models"

type Input struct {
	OpportunityID    string `json:"opportunityId"`
	AlgorithmVersion string `json:"algorithmVersion,omitempty"`
}

type Output struct {
	MatchResult *models.MatchResult
}

// Variables is what the job completes with.
func (o *Output) Variables() map[string]interface{} {
	event := o.MatchResult.CompletedEvent()
	return map[string]interface{}{
		"matchResult":         o.MatchResult,
		"matchStatus":         string(o.MatchResult.Status),
		"recommendationCount": event.RecommendationCount,
		"shortList":           event.ShortList,
	}
}
