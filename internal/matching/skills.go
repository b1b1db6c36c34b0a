package matching

import (
	"fmt"
	"math"
	"sort"

	"expert-matching/internal/models"
)

const (
	ReasonSkillNotPresent     = "skill not present in profile"
	ReasonLanguageNotPresent  = "language not present in profile"
	reasonMissingSkillID      = "requirement has no skill id"
	reasonUnknownRequiredLvl  = "requirement has unknown proficiency level %q"
	reasonUnknownCandidateLvl = "profile proficiency level %q not recognised"
	reasonSubstituted         = "substituted by related skill %s"
)

// SkillsOutcome is the skills scorer's verdict for one candidate.
type SkillsOutcome struct {
	Score     float64
	Matched   []models.MatchedSkill
	Unmatched []models.UnmatchedSkill
}

// weightedMean accumulates importance-weighted per-requirement scores.
type weightedMean struct {
	sum    float64
	weight float64
}

func (w *weightedMean) add(weight, score float64) {
	w.sum += weight * score / 100
	w.weight += weight
}

// value is 100 when nothing was required.
func (w *weightedMean) value() float64 {
	if w.weight == 0 {
		return 100
	}
	return 100 * w.sum / w.weight
}

// proficiencyRatio compares ordinals on the same scale, capped at 1.
func proficiencyRatio(actual, required int) float64 {
	return math.Min(1.0, float64(actual)/float64(required))
}

// ScoreSkills scores the pooled technical and soft requirements against the
// candidate's skills as a weighted mean of per-skill proficiency ratios.
// Missing skills are penalized by their importance weight, never excluded.
func ScoreSkills(requirements []models.SkillRequirement, candidate *models.CandidateProfile, cfg *models.ScoringConfig) SkillsOutcome {
	out := SkillsOutcome{
		Matched:   []models.MatchedSkill{},
		Unmatched: []models.UnmatchedSkill{},
	}
	held := indexSkills(candidate)

	var mean weightedMean
	for _, req := range requirements {
		weight := cfg.Multiplier(req.ImportanceLevel)
		required := req.MinimumProficiencyLevel.Ordinal()

		unmatched := models.UnmatchedSkill{
			SkillID:             req.SkillID,
			Name:                req.Name,
			RequiredProficiency: req.MinimumProficiencyLevel,
			Importance:          req.ImportanceLevel,
		}

		switch {
		case req.SkillID == "":
			unmatched.Reason = reasonMissingSkillID
		case required == 0:
			unmatched.Reason = fmt.Sprintf(reasonUnknownRequiredLvl, req.MinimumProficiencyLevel)
		}
		if unmatched.Reason != "" {
			mean.add(weight, 0)
			out.Unmatched = append(out.Unmatched, unmatched)
			continue
		}

		if actual, ok := held[req.SkillID]; ok {
			if actual.Ordinal() == 0 {
				unmatched.Reason = fmt.Sprintf(reasonUnknownCandidateLvl, actual)
				mean.add(weight, 0)
				out.Unmatched = append(out.Unmatched, unmatched)
				continue
			}
			score := 100 * proficiencyRatio(actual.Ordinal(), required)
			mean.add(weight, score)
			out.Matched = append(out.Matched, models.MatchedSkill{
				SkillID:             req.SkillID,
				Name:                req.Name,
				RequiredProficiency: req.MinimumProficiencyLevel,
				ActualProficiency:   actual,
				Importance:          req.ImportanceLevel,
				MatchScore:          roundHalfUp(score),
			})
			continue
		}

		unmatched.Reason = ReasonSkillNotPresent
		if sub, score, ok := substitute(req, required, held, &cfg.RelatedSkillSubstitution); ok {
			unmatched.Reason = fmt.Sprintf(reasonSubstituted, sub)
			unmatched.SubstitutedBy = sub
			unmatched.MatchScore = roundHalfUp(score)
			mean.add(weight, score)
		} else {
			mean.add(weight, 0)
		}
		out.Unmatched = append(out.Unmatched, unmatched)
	}

	out.Score = mean.value()
	return out
}

// substitute finds the best related skill the candidate holds. Its score is
// the configured credit times the related skill's proficiency ratio.
func substitute(req models.SkillRequirement, required int, held map[string]models.SkillLevel, sub *models.RelatedSkillSubstitution) (string, float64, bool) {
	if !sub.Enabled {
		return "", 0, false
	}
	related := append([]string(nil), sub.Related[req.SkillID]...)
	sort.Strings(related)

	bestID, best := "", 0.0
	for _, id := range related {
		level, ok := held[id]
		if !ok || level.Ordinal() == 0 {
			continue
		}
		score := 100 * sub.Credit * proficiencyRatio(level.Ordinal(), required)
		if score > best {
			bestID, best = id, score
		}
	}
	return bestID, best, bestID != ""
}

// indexSkills maps skill id to the highest level the candidate lists for it
// across technical and soft skills.
func indexSkills(c *models.CandidateProfile) map[string]models.SkillLevel {
	held := make(map[string]models.SkillLevel, len(c.TechnicalSkills)+len(c.SoftSkills))
	for _, group := range [][]models.CandidateSkill{c.TechnicalSkills, c.SoftSkills} {
		for _, s := range group {
			if cur, ok := held[s.SkillID]; !ok || s.ProficiencyLevel.Ordinal() > cur.Ordinal() {
				held[s.SkillID] = s.ProficiencyLevel
			}
		}
	}
	return held
}
