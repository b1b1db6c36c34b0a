package models

// QueryType labels the storage lookups made while assembling a run; it is
// used in error details and metrics.
type QueryType string

const (
	QueryTypeOpportunity       QueryType = "opportunity_requirements"
	QueryTypeCandidateIDs      QueryType = "candidate_ids"
	QueryTypeCandidateProfiles QueryType = "candidate_profiles"
	QueryTypeCandidateSearch   QueryType = "candidate_search"
	QueryTypeScoringConfig     QueryType = "scoring_config"
)
