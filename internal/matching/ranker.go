package matching

import (
	"sort"

	"expert-matching/internal/models"
)

// RankOutcome is the ordered, truncated recommendation list.
type RankOutcome struct {
	Recommendations []models.Recommendation
	BelowThreshold  int
	Truncated       int
}

// Rank drops recommendations below the threshold, sorts the rest by overall
// score, then skills score, then availability score (all descending), then
// candidate id ascending, truncates to the configured maximum and assigns
// 1-based ranks.
func Rank(recs []models.Recommendation, cfg *models.ScoringConfig) RankOutcome {
	kept := make([]models.Recommendation, 0, len(recs))
	below := 0
	for _, r := range recs {
		if r.OverallMatchScore < cfg.MinimumOverallScoreThreshold {
			below++
			continue
		}
		kept = append(kept, r)
	}

	sort.Slice(kept, func(i, j int) bool {
		return ranksBefore(&kept[i], &kept[j])
	})

	truncated := 0
	if len(kept) > cfg.MaxRecommendations {
		truncated = len(kept) - cfg.MaxRecommendations
		kept = kept[:cfg.MaxRecommendations]
	}

	for i := range kept {
		kept[i].Rank = i + 1
	}

	return RankOutcome{
		Recommendations: kept,
		BelowThreshold:  below,
		Truncated:       truncated,
	}
}

func ranksBefore(a, b *models.Recommendation) bool {
	if a.OverallMatchScore != b.OverallMatchScore {
		return a.OverallMatchScore > b.OverallMatchScore
	}
	if a.SkillsMatchScore != b.SkillsMatchScore {
		return a.SkillsMatchScore > b.SkillsMatchScore
	}
	if a.AvailabilityMatchScore != b.AvailabilityMatchScore {
		return a.AvailabilityMatchScore > b.AvailabilityMatchScore
	}
	return a.CandidateID < b.CandidateID
}
