package matching

import (
	"expert-matching/internal/models"
)

// AvailabilityOutcome is the availability filter's verdict for one candidate.
type AvailabilityOutcome struct {
	Excluded      bool
	Score         float64
	Confirmation  models.AvailabilityConfirmation
	SkippedRanges int
}

// EvaluateAvailability tests each required day against the candidate's
// availability ranges. A fixed timeline needs every day covered, otherwise
// the candidate is excluded.
func EvaluateAvailability(candidate *models.CandidateProfile, timeline models.Timeline, required []models.Date) AvailabilityOutcome {
	total := len(required)
	if total == 0 {
		return AvailabilityOutcome{
			Score: 100,
			Confirmation: models.AvailabilityConfirmation{
				IsFullyAvailable: true,
				ConflictingDates: []models.Date{},
			},
		}
	}

	covered, skipped := CoveredDays(candidate.Availability, required)

	conflicts := []models.Date{}
	available := 0
	for _, day := range required {
		if _, ok := covered[day]; ok {
			available++
		} else {
			conflicts = append(conflicts, day)
		}
	}

	return AvailabilityOutcome{
		Excluded: !timeline.IsFlexible && available < total,
		Score:    100 * float64(available) / float64(total),
		Confirmation: models.AvailabilityConfirmation{
			IsFullyAvailable:  available == total,
			AvailableDays:     available,
			TotalRequiredDays: total,
			ConflictingDates:  conflicts,
		},
		SkippedRanges: skipped,
	}
}

// CoveredDays returns the subset of days covered by at least one range,
// unrolling recurring ranges only at the days asked about. Ranges that fail
// validation contribute nothing and are counted in the second return value.
func CoveredDays(ranges []models.AvailabilityRange, days []models.Date) (map[models.Date]struct{}, int) {
	covered := make(map[models.Date]struct{}, len(days))
	valid := make([]models.AvailabilityRange, 0, len(ranges))
	skipped := 0

	for _, r := range ranges {
		if err := r.Validate(); err != nil {
			skipped++
			continue
		}
		valid = append(valid, r)
	}

	for _, d := range days {
		for _, r := range valid {
			if covers(r, d) {
				covered[d] = struct{}{}
				break
			}
		}
	}

	return covered, skipped
}

// covers reports whether d falls inside any occurrence of a validated range.
// Occurrences never reach past RecurUntil.
func covers(r models.AvailabilityRange, d models.Date) bool {
	if d.Before(r.Start) {
		return false
	}
	if !r.Recurring() {
		return !d.After(r.End)
	}
	if !r.RecurUntil.IsZero() && d.After(r.RecurUntil) {
		return false
	}

	span := r.Start.DaysUntil(r.End)

	if r.Recurrence == models.RecurrenceMonthly {
		// A monthly span is under 28 days, so only the occurrence in d's month
		// or the one before can reach d.
		months := monthsBetween(r.Start, d)
		for k := months; k >= 0 && k >= months-1; k-- {
			start := r.Start.AddMonths(k)
			// Months without this day of month are skipped rather than rolled over.
			if start.Day() != r.Start.Day() || start.After(d) {
				continue
			}
			if !start.AddDays(span).Before(d) {
				return true
			}
		}
		return false
	}

	period := 7
	if r.Recurrence == models.RecurrenceBiweekly {
		period = 14
	}
	return r.Start.DaysUntil(d)%period <= span
}

func monthsBetween(from, to models.Date) int {
	f, t := from.Time(), to.Time()
	return (t.Year()-f.Year())*12 + int(t.Month()) - int(f.Month())
}
