package matching

import (
	"math"

	"expert-matching/internal/models"
)

// SubScores are the four unrounded component scores on a 0..100 scale.
type SubScores struct {
	Skills       float64
	Availability float64
	Language     float64
	Geographic   float64
}

// Aggregate combines sub-scores with the configured weights, clamps the
// result to [0, 100] and rounds it to two decimals, half-up.
func Aggregate(s SubScores, cfg *models.ScoringConfig) float64 {
	overall := cfg.SkillsWeight*s.Skills +
		cfg.AvailabilityWeight*s.Availability +
		cfg.LanguageWeight*s.Language +
		cfg.GeographicWeight*s.Geographic

	return roundHalfUp(math.Max(0, math.Min(100, overall)))
}

// roundHalfUp rounds a non-negative score to two decimals. The value is
// first snapped to 1e-6 so binary representation error (1.005 stored as
// 1.00499...) does not round the wrong way.
func roundHalfUp(v float64) float64 {
	scaled := math.Round(v*100*1e6) / 1e6
	return math.Floor(scaled+0.5) / 100
}
