package models

import (
	"errors"
	"fmt"
)

type CandidateSkill struct {
	SkillID           string     `json:"skillId"`
	ProficiencyLevel  SkillLevel `json:"proficiencyLevel"`
	YearsOfExperience float64    `json:"yearsOfExperience"`
}

type CandidateLanguage struct {
	LanguageID       string        `json:"languageId"`
	ProficiencyLevel LanguageLevel `json:"proficiencyLevel"`
}

type RegionExpertise struct {
	RegionID          string `json:"regionId"`
	IsWillingToTravel bool   `json:"isWillingToTravel"`
}

// Recurrence controls how an availability range repeats.
type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiweekly Recurrence = "biweekly"
	RecurrenceMonthly  Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case "", RecurrenceNone, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	}
	return false
}

// AvailabilityRange is an inclusive span of available days, optionally
// repeating until RecurUntil (or indefinitely when RecurUntil is zero).
type AvailabilityRange struct {
	Start      Date       `json:"start"`
	End        Date       `json:"end"`
	Recurrence Recurrence `json:"recurrence,omitempty"`
	RecurUntil Date       `json:"recurUntil,omitempty"`
}

func (r AvailabilityRange) Recurring() bool {
	return r.Recurrence != "" && r.Recurrence != RecurrenceNone
}

// Validate rejects ranges that cannot be expanded.
func (r AvailabilityRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("availability range needs start and end")
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("availability range ends %s before it starts %s", r.End, r.Start)
	}
	if !r.Recurrence.Valid() {
		return fmt.Errorf("unknown recurrence %q", r.Recurrence)
	}
	if !r.Recurring() {
		return nil
	}
	span := r.Start.DaysUntil(r.End) + 1
	switch r.Recurrence {
	case RecurrenceWeekly:
		if span > 7 {
			return fmt.Errorf("weekly range spans %d days", span)
		}
	case RecurrenceBiweekly:
		if span > 14 {
			return fmt.Errorf("biweekly range spans %d days", span)
		}
	case RecurrenceMonthly:
		if span > 28 {
			return fmt.Errorf("monthly range spans %d days", span)
		}
	}
	if !r.RecurUntil.IsZero() && r.RecurUntil.Before(r.Start) {
		return fmt.Errorf("recurUntil %s precedes start %s", r.RecurUntil, r.Start)
	}
	return nil
}

type CandidateProfile struct {
	ID                   string              `json:"id"`
	DisplayName          string              `json:"displayName,omitempty"`
	TechnicalSkills      []CandidateSkill    `json:"technicalSkills"`
	SoftSkills           []CandidateSkill    `json:"softSkills"`
	Languages            []CandidateLanguage `json:"languages"`
	GeographicExpertise  []RegionExpertise   `json:"geographicExpertise"`
	RemoteWorkCapability bool                `json:"remoteWorkCapability"`
	Availability         []AvailabilityRange `json:"availability"`
}

// Validate is applied when profiles are ingested from storage or callers.
func (c *CandidateProfile) Validate() error {
	if c.ID == "" {
		return errors.New("candidate id is required")
	}
	for i, r := range c.Availability {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("candidate %s availability[%d]: %w", c.ID, i, err)
		}
	}
	return nil
}
