package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// WeightSumEpsilon is the tolerance allowed when the four weights are summed.
const WeightSumEpsilon = 0.001

const (
	DefaultMaxRecommendations      = 10
	DefaultMinRecommendations      = 3
	DefaultGeographicPartialCredit = 60.0
)

// RelatedSkillSubstitution lets a related skill stand in for a missing
// required one at reduced credit.
type RelatedSkillSubstitution struct {
	Enabled bool                `json:"enabled"`
	Credit  float64             `json:"credit" validate:"gte=0,lte=1"`
	Related map[string][]string `json:"related,omitempty"`
}

// ScoringConfig is one immutable, versioned set of scoring parameters.
type ScoringConfig struct {
	AlgorithmVersion             string                   `json:"algorithmVersion" validate:"required"`
	SkillsWeight                 float64                  `json:"skillsWeight" validate:"gte=0,lte=1"`
	AvailabilityWeight           float64                  `json:"availabilityWeight" validate:"gte=0,lte=1"`
	LanguageWeight               float64                  `json:"languageWeight" validate:"gte=0,lte=1"`
	GeographicWeight             float64                  `json:"geographicWeight" validate:"gte=0,lte=1"`
	MustHaveMultiplier           float64                  `json:"mustHaveMultiplier" validate:"gt=0,gtefield=NiceToHaveMultiplier"`
	NiceToHaveMultiplier         float64                  `json:"niceToHaveMultiplier" validate:"gt=0"`
	MinimumOverallScoreThreshold float64                  `json:"minimumOverallScoreThreshold" validate:"gte=0,lte=100"`
	MaxRecommendations           int                      `json:"maxRecommendations" validate:"gte=1,lte=1000"`
	MinRecommendations           int                      `json:"minRecommendations" validate:"gte=0,ltefield=MaxRecommendations"`
	GeographicPartialCredit      float64                  `json:"geographicPartialCredit" validate:"gte=0,lte=100"`
	RelatedSkillSubstitution     RelatedSkillSubstitution `json:"relatedSkillSubstitution"`
}

// DefaultScoringConfig returns the baseline weighting: skills 0.5,
// availability 0.3, language 0.1, geography 0.1.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		AlgorithmVersion:             "v1",
		SkillsWeight:                 0.5,
		AvailabilityWeight:           0.3,
		LanguageWeight:               0.1,
		GeographicWeight:             0.1,
		MustHaveMultiplier:           2.0,
		NiceToHaveMultiplier:         1.0,
		MinimumOverallScoreThreshold: 50,
		MaxRecommendations:           DefaultMaxRecommendations,
		MinRecommendations:           DefaultMinRecommendations,
		GeographicPartialCredit:      DefaultGeographicPartialCredit,
	}
}

// UnmarshalJSON starts from the defaults so omitted fields keep them.
func (c *ScoringConfig) UnmarshalJSON(data []byte) error {
	type plain ScoringConfig
	cfg := plain(DefaultScoringConfig())
	cfg.AlgorithmVersion = ""
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	*c = ScoringConfig(cfg)
	return nil
}

var validate = validator.New()

// Validate checks field ranges and cross-field rules, including that the
// weights sum to 1 within WeightSumEpsilon.
func (c ScoringConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describeValidation(err)
	}
	sum := c.WeightSum()
	if math.Abs(sum-1.0) > WeightSumEpsilon {
		return fmt.Errorf("weights sum to %.4f, expected 1.0", sum)
	}
	if c.RelatedSkillSubstitution.Enabled && c.RelatedSkillSubstitution.Credit == 0 {
		return fmt.Errorf("relatedSkillSubstitution.credit must be positive when enabled")
	}
	return nil
}

func (c ScoringConfig) WeightSum() float64 {
	return c.SkillsWeight + c.AvailabilityWeight + c.LanguageWeight + c.GeographicWeight
}

// Multiplier returns the weight applied to a requirement of importance i.
func (c ScoringConfig) Multiplier(i Importance) float64 {
	if i == MustHave {
		return c.MustHaveMultiplier
	}
	return c.NiceToHaveMultiplier
}

// Clone returns a deep copy so callers can share the original read-only.
func (c ScoringConfig) Clone() ScoringConfig {
	out := c
	if c.RelatedSkillSubstitution.Related != nil {
		out.RelatedSkillSubstitution.Related = make(map[string][]string, len(c.RelatedSkillSubstitution.Related))
		for k, v := range c.RelatedSkillSubstitution.Related {
			out.RelatedSkillSubstitution.Related[k] = append([]string(nil), v...)
		}
	}
	return out
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s violates %s", fe.Namespace(), rule))
	}
	return errors.New(strings.Join(parts, "; "))
}
