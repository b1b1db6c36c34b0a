package models

import "time"

type MatchStatus string

const (
	MatchStatusCompleted MatchStatus = "Completed"
	MatchStatusFailed    MatchStatus = "Failed"
)

type MatchedSkill struct {
	SkillID             string     `json:"skillId"`
	Name                string     `json:"name,omitempty"`
	RequiredProficiency SkillLevel `json:"requiredProficiency"`
	ActualProficiency   SkillLevel `json:"actualProficiency"`
	Importance          Importance `json:"importance"`
	MatchScore          float64    `json:"matchScore"`
}

type UnmatchedSkill struct {
	SkillID             string     `json:"skillId"`
	Name                string     `json:"name,omitempty"`
	RequiredProficiency SkillLevel `json:"requiredProficiency"`
	Importance          Importance `json:"importance"`
	Reason              string     `json:"reason"`
	SubstitutedBy       string     `json:"substitutedBy,omitempty"`
	MatchScore          float64    `json:"matchScore"`
}

type MatchedLanguage struct {
	LanguageID          string        `json:"languageId"`
	RequiredProficiency LanguageLevel `json:"requiredProficiency"`
	ActualProficiency   LanguageLevel `json:"actualProficiency"`
	Importance          Importance    `json:"importance"`
	MatchScore          float64       `json:"matchScore"`
}

type UnmatchedLanguage struct {
	LanguageID          string        `json:"languageId"`
	RequiredProficiency LanguageLevel `json:"requiredProficiency"`
	Importance          Importance    `json:"importance"`
	Reason              string        `json:"reason"`
}

type AvailabilityConfirmation struct {
	IsFullyAvailable  bool   `json:"isFullyAvailable"`
	AvailableDays     int    `json:"availableDays"`
	TotalRequiredDays int    `json:"totalRequiredDays"`
	ConflictingDates  []Date `json:"conflictingDates"`
}

type Recommendation struct {
	CandidateID              string                   `json:"candidateId"`
	Rank                     int                      `json:"rank"`
	OverallMatchScore        float64                  `json:"overallMatchScore"`
	SkillsMatchScore         float64                  `json:"skillsMatchScore"`
	AvailabilityMatchScore   float64                  `json:"availabilityMatchScore"`
	LanguageMatchScore       float64                  `json:"languageMatchScore"`
	GeographicMatchScore     float64                  `json:"geographicMatchScore"`
	MatchedSkills            []MatchedSkill           `json:"matchedSkills"`
	UnmatchedSkills          []UnmatchedSkill         `json:"unmatchedSkills"`
	MatchedLanguages         []MatchedLanguage        `json:"matchedLanguages"`
	UnmatchedLanguages       []UnmatchedLanguage      `json:"unmatchedLanguages"`
	AvailabilityConfirmation AvailabilityConfirmation `json:"availabilityConfirmation"`
}

// RunStatistics counts what happened to the candidate pool during a run.
type RunStatistics struct {
	CandidatesEvaluated      int `json:"candidatesEvaluated"`
	CandidatesExcluded       int `json:"candidatesExcluded"`
	CandidatesInvalid        int `json:"candidatesInvalid"`
	CandidatesBelowThreshold int `json:"candidatesBelowThreshold"`
	CandidatesTruncated      int `json:"candidatesTruncated"`
}

// MatchResult is the outcome of one matching run. It is never mutated after
// it has been built; a re-run produces a new result with a new ID.
type MatchResult struct {
	ID                      string           `json:"id"`
	OpportunityID           string           `json:"opportunityId"`
	GeneratedAt             time.Time        `json:"generatedAt"`
	AlgorithmVersion        string           `json:"algorithmVersion"`
	ConfigurationParameters *ScoringConfig   `json:"configurationParameters,omitempty"`
	Status                  MatchStatus      `json:"status"`
	ErrorCode               string           `json:"errorCode,omitempty"`
	ErrorMessage            string           `json:"errorMessage,omitempty"`
	ProcessingTimeMs        int64            `json:"processingTimeMs"`
	Statistics              RunStatistics    `json:"statistics"`
	Recommendations         []Recommendation `json:"recommendations"`
}

func (r *MatchResult) Failed() bool { return r.Status == MatchStatusFailed }

// TopCandidateIDs returns up to n candidate ids in rank order.
func (r *MatchResult) TopCandidateIDs(n int) []string {
	if n > len(r.Recommendations) {
		n = len(r.Recommendations)
	}
	ids := make([]string, 0, n)
	for _, rec := range r.Recommendations[:n] {
		ids = append(ids, rec.CandidateID)
	}
	return ids
}

// MatchingCompletedEvent is the asynchronous "matching completed" signal.
type MatchingCompletedEvent struct {
	MatchResultID       string      `json:"matchResultId"`
	OpportunityID       string      `json:"opportunityId"`
	Status              MatchStatus `json:"status"`
	ErrorCode           string      `json:"errorCode,omitempty"`
	AlgorithmVersion    string      `json:"algorithmVersion"`
	RecommendationCount int         `json:"recommendationCount"`
	ShortList           bool        `json:"shortList"`
	TopCandidateIDs     []string    `json:"topCandidateIds"`
	GeneratedAt         time.Time   `json:"generatedAt"`
}

// CompletedEvent summarises r for downstream consumers. ShortList flags a
// completed run with fewer recommendations than the configured minimum.
func (r *MatchResult) CompletedEvent() MatchingCompletedEvent {
	short := false
	if r.Status == MatchStatusCompleted && r.ConfigurationParameters != nil {
		short = len(r.Recommendations) < r.ConfigurationParameters.MinRecommendations
	}
	return MatchingCompletedEvent{
		MatchResultID:       r.ID,
		OpportunityID:       r.OpportunityID,
		Status:              r.Status,
		ErrorCode:           r.ErrorCode,
		AlgorithmVersion:    r.AlgorithmVersion,
		RecommendationCount: len(r.Recommendations),
		ShortList:           short,
		TopCandidateIDs:     r.TopCandidateIDs(len(r.Recommendations)),
		GeneratedAt:         r.GeneratedAt,
	}
}
