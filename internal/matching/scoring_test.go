package matching

import (
	"testing"

	"expert-matching/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func day(s string) models.Date { return models.MustParseDate(s) }

func days(from, to string) []models.Date {
	var out []models.Date
	for d := day(from); !d.After(day(to)); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

func defaultConfig() *models.ScoringConfig {
	cfg := models.DefaultScoringConfig()
	return &cfg
}

func skillReq(id string, importance models.Importance, level models.SkillLevel) models.SkillRequirement {
	return models.SkillRequirement{SkillID: id, Name: id, ImportanceLevel: importance, MinimumProficiencyLevel: level}
}

func skill(id string, level models.SkillLevel) models.CandidateSkill {
	return models.CandidateSkill{SkillID: id, ProficiencyLevel: level, YearsOfExperience: 5}
}

// ==========================
// AvailabilityFilter
// ==========================

func TestEvaluateAvailability(t *testing.T) {
	tests := []struct {
		name          string
		ranges        []models.AvailabilityRange
		timeline      models.Timeline
		wantExcluded  bool
		wantAvailable int
		wantTotal     int
		wantScore     float64
		wantConflicts []string
		wantSkipped   int
	}{
		{
			name:          "fully covered fixed timeline",
			ranges:        []models.AvailabilityRange{{Start: day("2025-03-01"), End: day("2025-03-31")}},
			timeline:      models.Timeline{ExpectedStartDate: day("2025-03-03"), ExpectedEndDate: day("2025-03-07")},
			wantAvailable: 5,
			wantTotal:     5,
			wantScore:     100,
			wantConflicts: []string{},
		},
		{
			name:          "partial coverage on fixed timeline excludes",
			ranges:        []models.AvailabilityRange{{Start: day("2025-03-03"), End: day("2025-03-05")}},
			timeline:      models.Timeline{ExpectedStartDate: day("2025-03-03"), ExpectedEndDate: day("2025-03-07")},
			wantExcluded:  true,
			wantAvailable: 3,
			wantTotal:     5,
			wantScore:     60,
			wantConflicts: []string{"2025-03-06", "2025-03-07"},
		},
		{
			name:          "partial coverage on flexible timeline proceeds",
			ranges:        []models.AvailabilityRange{{Start: day("2025-03-03"), End: day("2025-03-05")}},
			timeline:      models.Timeline{ExpectedStartDate: day("2025-03-03"), ExpectedEndDate: day("2025-03-07"), IsFlexible: true},
			wantAvailable: 3,
			wantTotal:     5,
			wantScore:     60,
			wantConflicts: []string{"2025-03-06", "2025-03-07"},
		},
		{
			name:   "specific days take precedence over the date range",
			ranges: []models.AvailabilityRange{{Start: day("2025-03-10"), End: day("2025-03-10")}},
			timeline: models.Timeline{
				ExpectedStartDate:    day("2025-03-01"),
				ExpectedEndDate:      day("2025-03-31"),
				SpecificRequiredDays: []models.Date{day("2025-03-12"), day("2025-03-10"), day("2025-03-10")},
				IsFlexible:           true,
			},
			wantAvailable: 1,
			wantTotal:     2,
			wantScore:     50,
			wantConflicts: []string{"2025-03-12"},
		},
		{
			name:          "no required days scores 100",
			timeline:      models.Timeline{},
			wantScore:     100,
			wantConflicts: []string{},
		},
		{
			name: "malformed range contributes nothing",
			ranges: []models.AvailabilityRange{
				{Start: day("2025-03-07"), End: day("2025-03-03")},
				{Start: day("2025-03-03"), End: day("2025-03-04")},
			},
			timeline:      models.Timeline{ExpectedStartDate: day("2025-03-03"), ExpectedEndDate: day("2025-03-04")},
			wantAvailable: 2,
			wantTotal:     2,
			wantScore:     100,
			wantConflicts: []string{},
			wantSkipped:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.CandidateProfile{ID: "c1", Availability: tt.ranges}
			out := EvaluateAvailability(c, tt.timeline, tt.timeline.RequiredDays())

			assert.Equal(t, tt.wantExcluded, out.Excluded)
			assert.Equal(t, tt.wantAvailable, out.Confirmation.AvailableDays)
			assert.Equal(t, tt.wantTotal, out.Confirmation.TotalRequiredDays)
			assert.InDelta(t, tt.wantScore, out.Score, 1e-9)
			assert.Equal(t, tt.wantSkipped, out.SkippedRanges)
			assert.Equal(t, out.Confirmation.AvailableDays == out.Confirmation.TotalRequiredDays, out.Confirmation.IsFullyAvailable)

			conflicts := make([]string, 0, len(out.Confirmation.ConflictingDates))
			for _, d := range out.Confirmation.ConflictingDates {
				conflicts = append(conflicts, d.String())
			}
			assert.Equal(t, tt.wantConflicts, conflicts)
		})
	}
}

func TestCoveredDays_Recurrence(t *testing.T) {
	tests := []struct {
		name   string
		r      models.AvailabilityRange
		from   string
		to     string
		expect []string
	}{
		{
			name:   "weekly",
			r:      models.AvailabilityRange{Start: day("2025-03-03"), End: day("2025-03-04"), Recurrence: models.RecurrenceWeekly},
			from:   "2025-03-03",
			to:     "2025-03-16",
			expect: []string{"2025-03-03", "2025-03-04", "2025-03-10", "2025-03-11"},
		},
		{
			name:   "biweekly",
			r:      models.AvailabilityRange{Start: day("2025-03-03"), End: day("2025-03-04"), Recurrence: models.RecurrenceBiweekly},
			from:   "2025-03-03",
			to:     "2025-03-20",
			expect: []string{"2025-03-03", "2025-03-04", "2025-03-17", "2025-03-18"},
		},
		{
			name: "weekly stops at recurUntil",
			r: models.AvailabilityRange{
				Start: day("2025-03-03"), End: day("2025-03-04"),
				Recurrence: models.RecurrenceWeekly, RecurUntil: day("2025-03-10"),
			},
			from:   "2025-03-03",
			to:     "2025-03-16",
			expect: []string{"2025-03-03", "2025-03-04", "2025-03-10"},
		},
		{
			name:   "weekly series that started years before the horizon",
			r:      models.AvailabilityRange{Start: day("2020-01-06"), End: day("2020-01-06"), Recurrence: models.RecurrenceWeekly},
			from:   "2025-03-03",
			to:     "2025-03-09",
			expect: []string{"2025-03-03"},
		},
		{
			name:   "weekly span crossing into the horizon",
			r:      models.AvailabilityRange{Start: day("2025-02-28"), End: day("2025-03-02"), Recurrence: models.RecurrenceWeekly},
			from:   "2025-03-01",
			to:     "2025-03-08",
			expect: []string{"2025-03-01", "2025-03-02", "2025-03-07", "2025-03-08"},
		},
		{
			name:   "monthly skips months without the day",
			r:      models.AvailabilityRange{Start: day("2025-01-31"), End: day("2025-01-31"), Recurrence: models.RecurrenceMonthly},
			from:   "2025-02-01",
			to:     "2025-05-31",
			expect: []string{"2025-03-31", "2025-05-31"},
		},
		{
			name:   "one-off range clipped to the horizon",
			r:      models.AvailabilityRange{Start: day("2025-02-25"), End: day("2025-03-02")},
			from:   "2025-03-01",
			to:     "2025-03-31",
			expect: []string{"2025-03-01", "2025-03-02"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			covered, skipped := CoveredDays([]models.AvailabilityRange{tt.r}, days(tt.from, tt.to))
			require.Zero(t, skipped)

			var got []string
			for _, d := range days(tt.from, tt.to) {
				if _, ok := covered[d]; ok {
					got = append(got, d.String())
				}
			}
			assert.Equal(t, tt.expect, got)
			assert.Len(t, covered, len(tt.expect))
		})
	}
}

func TestCoveredDays_SparseDaysYearsApart(t *testing.T) {
	ranges := []models.AvailabilityRange{
		{Start: day("2025-03-03"), End: day("2025-03-03"), Recurrence: models.RecurrenceWeekly},
		{Start: day("2025-03-03"), End: day("2025-03-05")},
		{Start: day("2025-03-10"), End: day("2025-03-01")},
	}
	required := []models.Date{day("2025-03-04"), day("2040-03-05"), day("2040-03-06")}

	covered, skipped := CoveredDays(ranges, required)

	assert.Equal(t, 1, skipped)
	assert.Len(t, covered, 2)
	assert.Contains(t, covered, day("2025-03-04"))
	assert.Contains(t, covered, day("2040-03-05"))
	assert.NotContains(t, covered, day("2040-03-06"))
}

// ==========================
// SkillsScorer
// ==========================

func TestScoreSkills(t *testing.T) {
	tests := []struct {
		name          string
		reqs          []models.SkillRequirement
		technical     []models.CandidateSkill
		soft          []models.CandidateSkill
		wantScore     float64
		wantMatched   int
		wantUnmatched int
		wantReason    string
	}{
		{
			name:      "no requirements",
			wantScore: 100,
		},
		{
			name:        "exceeding the level caps at 100",
			reqs:        []models.SkillRequirement{skillReq("aws", models.MustHave, models.SkillAdvanced)},
			technical:   []models.CandidateSkill{skill("aws", models.SkillExpert)},
			wantScore:   100,
			wantMatched: 1,
		},
		{
			name:        "lower level scores the ordinal ratio",
			reqs:        []models.SkillRequirement{skillReq("aws", models.MustHave, models.SkillExpert)},
			technical:   []models.CandidateSkill{skill("aws", models.SkillIntermediate)},
			wantScore:   50,
			wantMatched: 1,
		},
		{
			name: "must have miss weighs twice a nice to have",
			reqs: []models.SkillRequirement{
				skillReq("aws", models.MustHave, models.SkillExpert),
				skillReq("comm", models.NiceToHave, models.SkillBeginner),
			},
			soft:          []models.CandidateSkill{skill("comm", models.SkillAdvanced)},
			wantScore:     100.0 / 3,
			wantMatched:   1,
			wantUnmatched: 1,
			wantReason:    ReasonSkillNotPresent,
		},
		{
			name: "nice to have miss",
			reqs: []models.SkillRequirement{
				skillReq("aws", models.MustHave, models.SkillExpert),
				skillReq("comm", models.NiceToHave, models.SkillBeginner),
			},
			technical:     []models.CandidateSkill{skill("aws", models.SkillExpert)},
			wantScore:     200.0 / 3,
			wantMatched:   1,
			wantUnmatched: 1,
			wantReason:    ReasonSkillNotPresent,
		},
		{
			name:        "highest listed level wins across groups",
			reqs:        []models.SkillRequirement{skillReq("lead", models.MustHave, models.SkillExpert)},
			technical:   []models.CandidateSkill{skill("lead", models.SkillBeginner)},
			soft:        []models.CandidateSkill{skill("lead", models.SkillExpert)},
			wantScore:   100,
			wantMatched: 1,
		},
		{
			name:          "unknown required level is unmatched",
			reqs:          []models.SkillRequirement{skillReq("aws", models.MustHave, "Guru")},
			technical:     []models.CandidateSkill{skill("aws", models.SkillExpert)},
			wantScore:     0,
			wantUnmatched: 1,
			wantReason:    `requirement has unknown proficiency level "Guru"`,
		},
		{
			name:          "empty skill id is unmatched",
			reqs:          []models.SkillRequirement{skillReq("", models.NiceToHave, models.SkillBeginner)},
			wantScore:     0,
			wantUnmatched: 1,
			wantReason:    "requirement has no skill id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.CandidateProfile{ID: "c1", TechnicalSkills: tt.technical, SoftSkills: tt.soft}
			out := ScoreSkills(tt.reqs, c, defaultConfig())

			assert.InDelta(t, tt.wantScore, out.Score, 1e-9)
			assert.Len(t, out.Matched, tt.wantMatched)
			assert.Len(t, out.Unmatched, tt.wantUnmatched)
			if tt.wantReason != "" {
				require.NotEmpty(t, out.Unmatched)
				assert.Equal(t, tt.wantReason, out.Unmatched[0].Reason)
			}
		})
	}
}

func TestScoreSkills_MatchedDetail(t *testing.T) {
	reqs := []models.SkillRequirement{skillReq("aws", models.MustHave, models.SkillExpert)}
	c := &models.CandidateProfile{TechnicalSkills: []models.CandidateSkill{skill("aws", models.SkillAdvanced)}}

	out := ScoreSkills(reqs, c, defaultConfig())
	require.Len(t, out.Matched, 1)
	assert.Equal(t, models.MatchedSkill{
		SkillID:             "aws",
		Name:                "aws",
		RequiredProficiency: models.SkillExpert,
		ActualProficiency:   models.SkillAdvanced,
		Importance:          models.MustHave,
		MatchScore:          75,
	}, out.Matched[0])
}

func TestScoreSkills_RelatedSubstitution(t *testing.T) {
	cfg := defaultConfig()
	cfg.RelatedSkillSubstitution = models.RelatedSkillSubstitution{
		Enabled: true,
		Credit:  0.5,
		Related: map[string][]string{"aws": {"gcp", "azure"}},
	}
	reqs := []models.SkillRequirement{skillReq("aws", models.MustHave, models.SkillAdvanced)}
	c := &models.CandidateProfile{TechnicalSkills: []models.CandidateSkill{
		skill("gcp", models.SkillBeginner),
		skill("azure", models.SkillAdvanced),
	}}

	out := ScoreSkills(reqs, c, cfg)
	assert.InDelta(t, 50, out.Score, 1e-9)
	assert.Empty(t, out.Matched)
	require.Len(t, out.Unmatched, 1)
	assert.Equal(t, "substituted by related skill azure", out.Unmatched[0].Reason)
	assert.Equal(t, "azure", out.Unmatched[0].SubstitutedBy)
	assert.Equal(t, 50.0, out.Unmatched[0].MatchScore)

	t.Run("disabled by default", func(t *testing.T) {
		out := ScoreSkills(reqs, c, defaultConfig())
		assert.Zero(t, out.Score)
		assert.Equal(t, ReasonSkillNotPresent, out.Unmatched[0].Reason)
		assert.Empty(t, out.Unmatched[0].SubstitutedBy)
	})
}

// ==========================
// LanguageGeoScorer
// ==========================

func TestScoreLanguages(t *testing.T) {
	reqs := []models.LanguageRequirement{
		{LanguageID: "en", ImportanceLevel: models.MustHave, MinimumProficiencyLevel: models.LanguageFluent},
		{LanguageID: "de", ImportanceLevel: models.NiceToHave, MinimumProficiencyLevel: models.LanguageConversational},
	}

	t.Run("weighted mean with a missing language", func(t *testing.T) {
		c := &models.CandidateProfile{Languages: []models.CandidateLanguage{
			{LanguageID: "en", ProficiencyLevel: models.LanguageNative},
		}}
		out := ScoreLanguages(reqs, c, defaultConfig())
		assert.InDelta(t, 200.0/3, out.Score, 1e-9)
		require.Len(t, out.Unmatched, 1)
		assert.Equal(t, ReasonLanguageNotPresent, out.Unmatched[0].Reason)
		assert.Equal(t, "de", out.Unmatched[0].LanguageID)
	})

	t.Run("below required level", func(t *testing.T) {
		c := &models.CandidateProfile{Languages: []models.CandidateLanguage{
			{LanguageID: "en", ProficiencyLevel: models.LanguageBasic},
			{LanguageID: "de", ProficiencyLevel: models.LanguageNative},
		}}
		out := ScoreLanguages(reqs, c, defaultConfig())
		// en: 1/3 at weight 2, de: 1 at weight 1.
		assert.InDelta(t, 100*(2.0/3+1)/3, out.Score, 1e-9)
		require.Len(t, out.Matched, 2)
		assert.Equal(t, 33.33, out.Matched[0].MatchScore)
	})

	t.Run("no requirements", func(t *testing.T) {
		out := ScoreLanguages(nil, &models.CandidateProfile{}, defaultConfig())
		assert.Equal(t, 100.0, out.Score)
	})
}

func TestScoreGeography(t *testing.T) {
	tests := []struct {
		name      string
		req       *models.GeographicRequirement
		regions   []models.RegionExpertise
		remote    bool
		wantScore float64
	}{
		{name: "no requirement", req: nil, wantScore: 100},
		{
			name:      "listed region without presence",
			req:       &models.GeographicRequirement{RegionID: "emea"},
			regions:   []models.RegionExpertise{{RegionID: "emea"}},
			wantScore: 100,
		},
		{
			name:      "listed region with presence and travel",
			req:       &models.GeographicRequirement{RegionID: "emea", RequiresPhysicalPresence: true},
			regions:   []models.RegionExpertise{{RegionID: "emea", IsWillingToTravel: true}},
			wantScore: 100,
		},
		{
			name:      "listed region with presence but no travel",
			req:       &models.GeographicRequirement{RegionID: "emea", RequiresPhysicalPresence: true},
			regions:   []models.RegionExpertise{{RegionID: "emea"}},
			wantScore: 0,
		},
		{
			name:      "remote capable when presence not required",
			req:       &models.GeographicRequirement{RegionID: "emea"},
			remote:    true,
			wantScore: 60,
		},
		{
			name:      "remote capable when presence required but remote allowed",
			req:       &models.GeographicRequirement{RegionID: "emea", RequiresPhysicalPresence: true, AllowsRemoteWork: true},
			regions:   []models.RegionExpertise{{RegionID: "emea"}},
			remote:    true,
			wantScore: 60,
		},
		{
			name:      "remote capable but presence required",
			req:       &models.GeographicRequirement{RegionID: "emea", RequiresPhysicalPresence: true},
			remote:    true,
			wantScore: 0,
		},
		{
			name:      "not remote capable and region missing",
			req:       &models.GeographicRequirement{RegionID: "emea", AllowsRemoteWork: true},
			regions:   []models.RegionExpertise{{RegionID: "apac", IsWillingToTravel: true}},
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.CandidateProfile{GeographicExpertise: tt.regions, RemoteWorkCapability: tt.remote}
			assert.Equal(t, tt.wantScore, ScoreGeography(tt.req, c, defaultConfig()))
		})
	}

	t.Run("partial credit is configurable", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.GeographicPartialCredit = 75
		c := &models.CandidateProfile{RemoteWorkCapability: true}
		assert.Equal(t, 75.0, ScoreGeography(&models.GeographicRequirement{RegionID: "x"}, c, cfg))
	})
}

// ==========================
// ScoreAggregator
// ==========================

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{2.675, 2.68},
		{66.666666, 66.67},
		{33.333333, 33.33},
		{99.995, 100},
		{0, 0},
		{100, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundHalfUp(tt.in), "roundHalfUp(%v)", tt.in)
	}
}

func TestAggregate(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, 100.0, Aggregate(SubScores{100, 100, 100, 100}, cfg))
	assert.Equal(t, 0.0, Aggregate(SubScores{}, cfg))
	// 0.5*80 + 0.3*50 + 0.1*100 + 0.1*60
	assert.Equal(t, 71.0, Aggregate(SubScores{Skills: 80, Availability: 50, Language: 100, Geographic: 60}, cfg))
	// 0.5*(200/3) = 33.333..
	assert.Equal(t, 33.33, Aggregate(SubScores{Skills: 200.0 / 3}, cfg))

	t.Run("weights within epsilon never exceed 100", func(t *testing.T) {
		heavy := defaultConfig()
		heavy.SkillsWeight = 0.5009
		assert.Equal(t, 100.0, Aggregate(SubScores{100, 100, 100, 100}, heavy))
	})
}

// ==========================
// Ranker
// ==========================

func rec(id string, overall, skills, avail float64) models.Recommendation {
	return models.Recommendation{
		CandidateID:            id,
		OverallMatchScore:      overall,
		SkillsMatchScore:       skills,
		AvailabilityMatchScore: avail,
	}
}

func TestRank_TieBreaks(t *testing.T) {
	cfg := defaultConfig()
	cfg.MinimumOverallScoreThreshold = 0

	out := Rank([]models.Recommendation{
		rec("d", 80, 70, 90),
		rec("c", 80, 70, 90),
		rec("b", 80, 70, 95),
		rec("a", 80, 75, 10),
		rec("e", 90, 10, 10),
	}, cfg)

	ids := make([]string, 0, len(out.Recommendations))
	for i, r := range out.Recommendations {
		ids = append(ids, r.CandidateID)
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"e", "a", "b", "c", "d"}, ids)
}

func TestRank_ThresholdAndTruncation(t *testing.T) {
	cfg := defaultConfig()
	cfg.MinimumOverallScoreThreshold = 50
	cfg.MaxRecommendations = 2

	out := Rank([]models.Recommendation{
		rec("a", 49.99, 0, 0),
		rec("b", 50, 0, 0),
		rec("c", 70, 0, 0),
		rec("d", 60, 0, 0),
	}, cfg)

	require.Len(t, out.Recommendations, 2)
	assert.Equal(t, "c", out.Recommendations[0].CandidateID)
	assert.Equal(t, "d", out.Recommendations[1].CandidateID)
	assert.Equal(t, 1, out.BelowThreshold)
	assert.Equal(t, 1, out.Truncated)
}

func TestRank_EmptyInput(t *testing.T) {
	out := Rank(nil, defaultConfig())
	assert.NotNil(t, out.Recommendations)
	assert.Empty(t, out.Recommendations)
}
