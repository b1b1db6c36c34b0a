package matching

import (
	"fmt"

	"expert-matching/internal/models"
)

// LanguageOutcome is the language scorer's verdict for one candidate.
type LanguageOutcome struct {
	Score     float64
	Matched   []models.MatchedLanguage
	Unmatched []models.UnmatchedLanguage
}

// ScoreLanguages applies the skills weighted mean on the language scale.
func ScoreLanguages(requirements []models.LanguageRequirement, candidate *models.CandidateProfile, cfg *models.ScoringConfig) LanguageOutcome {
	out := LanguageOutcome{
		Matched:   []models.MatchedLanguage{},
		Unmatched: []models.UnmatchedLanguage{},
	}

	held := make(map[string]models.LanguageLevel, len(candidate.Languages))
	for _, l := range candidate.Languages {
		if cur, ok := held[l.LanguageID]; !ok || l.ProficiencyLevel.Ordinal() > cur.Ordinal() {
			held[l.LanguageID] = l.ProficiencyLevel
		}
	}

	var mean weightedMean
	for _, req := range requirements {
		weight := cfg.Multiplier(req.ImportanceLevel)
		required := req.MinimumProficiencyLevel.Ordinal()
		actual, ok := held[req.LanguageID]

		unmatched := models.UnmatchedLanguage{
			LanguageID:          req.LanguageID,
			RequiredProficiency: req.MinimumProficiencyLevel,
			Importance:          req.ImportanceLevel,
		}
		switch {
		case req.LanguageID == "":
			unmatched.Reason = "requirement has no language id"
		case required == 0:
			unmatched.Reason = fmt.Sprintf(reasonUnknownRequiredLvl, req.MinimumProficiencyLevel)
		case !ok:
			unmatched.Reason = ReasonLanguageNotPresent
		case actual.Ordinal() == 0:
			unmatched.Reason = fmt.Sprintf(reasonUnknownCandidateLvl, actual)
		}
		if unmatched.Reason != "" {
			mean.add(weight, 0)
			out.Unmatched = append(out.Unmatched, unmatched)
			continue
		}

		score := 100 * proficiencyRatio(actual.Ordinal(), required)
		mean.add(weight, score)
		out.Matched = append(out.Matched, models.MatchedLanguage{
			LanguageID:          req.LanguageID,
			RequiredProficiency: req.MinimumProficiencyLevel,
			ActualProficiency:   actual,
			Importance:          req.ImportanceLevel,
			MatchScore:          roundHalfUp(score),
		})
	}

	out.Score = mean.value()
	return out
}

// ScoreGeography gives full credit when the candidate covers the region
// (and will travel if presence is required), the configured partial credit
// when remote work is acceptable and the candidate can work remotely, and 0
// otherwise. No required region scores 100.
func ScoreGeography(req *models.GeographicRequirement, candidate *models.CandidateProfile, cfg *models.ScoringConfig) float64 {
	if req == nil || req.RegionID == "" {
		return 100
	}

	for _, region := range candidate.GeographicExpertise {
		if region.RegionID != req.RegionID {
			continue
		}
		if !req.RequiresPhysicalPresence || region.IsWillingToTravel {
			return 100
		}
	}

	if (!req.RequiresPhysicalPresence || req.AllowsRemoteWork) && candidate.RemoteWorkCapability {
		return cfg.GeographicPartialCredit
	}
	return 0
}
