package models

import (
	"errors"
	"fmt"
	"sort"
)

// MaxTimelineDays bounds the number of required days one opportunity may span.
const MaxTimelineDays = 3660

type SkillRequirement struct {
	SkillID                 string     `json:"skillId"`
	Name                    string     `json:"name,omitempty"`
	ImportanceLevel         Importance `json:"importanceLevel"`
	MinimumProficiencyLevel SkillLevel `json:"minimumProficiencyLevel"`
}

type LanguageRequirement struct {
	LanguageID              string        `json:"languageId"`
	ImportanceLevel         Importance    `json:"importanceLevel"`
	MinimumProficiencyLevel LanguageLevel `json:"minimumProficiencyLevel"`
}

type GeographicRequirement struct {
	RegionID                 string `json:"regionId"`
	RequiresPhysicalPresence bool   `json:"requiresPhysicalPresence"`
	AllowsRemoteWork         bool   `json:"allowsRemoteWork"`
}

type Timeline struct {
	ExpectedStartDate    Date   `json:"expectedStartDate"`
	ExpectedEndDate      Date   `json:"expectedEndDate"`
	SpecificRequiredDays []Date `json:"specificRequiredDays,omitempty"`
	IsFlexible           bool   `json:"isFlexible"`
}

type OpportunityRequirements struct {
	ID                        string                 `json:"id"`
	Title                     string                 `json:"title,omitempty"`
	RequiredTechnicalSkills   []SkillRequirement     `json:"requiredTechnicalSkills"`
	RequiredSoftSkills        []SkillRequirement     `json:"requiredSoftSkills"`
	RequiredIndustryKnowledge []string               `json:"requiredIndustryKnowledge,omitempty"`
	RequiredLanguages         []LanguageRequirement  `json:"requiredLanguages"`
	GeographicRequirement     *GeographicRequirement `json:"geographicRequirement,omitempty"`
	Timeline                  Timeline               `json:"timeline"`
}

// AllSkills pools technical and soft requirements, technical first.
func (o *OpportunityRequirements) AllSkills() []SkillRequirement {
	out := make([]SkillRequirement, 0, len(o.RequiredTechnicalSkills)+len(o.RequiredSoftSkills))
	out = append(out, o.RequiredTechnicalSkills...)
	return append(out, o.RequiredSoftSkills...)
}

// Validate rejects snapshots that cannot be matched at all. Individual
// malformed requirements are tolerated and scored as unmatched.
func (o *OpportunityRequirements) Validate() error {
	if o.ID == "" {
		return errors.New("opportunity id is required")
	}
	return o.Timeline.Validate()
}

// Validate checks that the timeline describes a finite set of days.
func (t Timeline) Validate() error {
	if len(t.SpecificRequiredDays) > 0 {
		for i, d := range t.SpecificRequiredDays {
			if d.IsZero() {
				return fmt.Errorf("timeline.specificRequiredDays[%d] is empty", i)
			}
		}
		if len(t.SpecificRequiredDays) > MaxTimelineDays {
			return fmt.Errorf("timeline lists %d required days, limit is %d", len(t.SpecificRequiredDays), MaxTimelineDays)
		}
		return nil
	}

	start, end := t.ExpectedStartDate, t.ExpectedEndDate
	switch {
	case start.IsZero() && end.IsZero():
		return nil
	case start.IsZero() || end.IsZero():
		return errors.New("timeline needs both expectedStartDate and expectedEndDate")
	case end.Before(start):
		return fmt.Errorf("timeline ends %s before it starts %s", end, start)
	case start.DaysUntil(end)+1 > MaxTimelineDays:
		return fmt.Errorf("timeline spans %d days, limit is %d", start.DaysUntil(end)+1, MaxTimelineDays)
	}
	return nil
}

// RequiredDays returns the days a candidate must cover in ascending order:
// the specific days when given, otherwise every day from start to end.
func (t Timeline) RequiredDays() []Date {
	if len(t.SpecificRequiredDays) > 0 {
		seen := make(map[Date]struct{}, len(t.SpecificRequiredDays))
		days := make([]Date, 0, len(t.SpecificRequiredDays))
		for _, d := range t.SpecificRequiredDays {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
		return days
	}

	if t.ExpectedStartDate.IsZero() || t.ExpectedEndDate.IsZero() || t.ExpectedEndDate.Before(t.ExpectedStartDate) {
		return nil
	}
	n := t.ExpectedStartDate.DaysUntil(t.ExpectedEndDate) + 1
	days := make([]Date, 0, n)
	for d := t.ExpectedStartDate; !d.After(t.ExpectedEndDate); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// CandidateFilter narrows the candidate query. Empty fields do not filter;
// populated fields match candidates having any of the listed values.
type CandidateFilter struct {
	SkillIDs             []string `json:"skillIds,omitempty"`
	LanguageIDs          []string `json:"languageIds,omitempty"`
	RegionID             string   `json:"regionId,omitempty"`
	IncludeRemoteCapable bool     `json:"includeRemoteCapable"`
	Limit                int      `json:"limit,omitempty"`
}

// IsEmpty reports whether the filter would return the whole population.
func (f CandidateFilter) IsEmpty() bool {
	return len(f.SkillIDs) == 0 && len(f.LanguageIDs) == 0 && f.RegionID == ""
}

// FilterFor derives the candidate query for an opportunity.
func FilterFor(o *OpportunityRequirements) CandidateFilter {
	f := CandidateFilter{}
	for _, s := range o.AllSkills() {
		if s.SkillID != "" {
			f.SkillIDs = append(f.SkillIDs, s.SkillID)
		}
	}
	for _, l := range o.RequiredLanguages {
		if l.LanguageID != "" {
			f.LanguageIDs = append(f.LanguageIDs, l.LanguageID)
		}
	}
	if g := o.GeographicRequirement; g != nil && g.RegionID != "" {
		f.RegionID = g.RegionID
		f.IncludeRemoteCapable = !g.RequiresPhysicalPresence || g.AllowsRemoteWork
	}
	sort.Strings(f.SkillIDs)
	sort.Strings(f.LanguageIDs)
	return f
}
