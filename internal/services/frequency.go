package services

import (
	"delivery-schedule-service/internal/domain"
	"fmt"
	"time"
)

// ExpandFrequency lists the candidate delivery dates for a plan inside
// the inclusive window [from, to].
//
// Interval patterns (alternate-days, custom) anchor their offsets to the
// window start, not to a fixed epoch: shifting the window start by one
// day shifts the parity, deterministically and reproducibly. The output
// is strictly ascending; an empty window or empty result is valid.
func ExpandFrequency(plan domain.Plan, from, to time.Time) ([]time.Time, error) {
	start := domain.DateOf(from)
	end := domain.DateOf(to)
	if start.After(end) {
		return nil, nil
	}

	step := 0
	switch plan.Frequency {
	case domain.FrequencyDaily:
		step = 1
	case domain.FrequencyAlternate:
		step = 2
	case domain.FrequencyCustom:
		if plan.IntervalDays < 1 {
			return nil, fmt.Errorf(
				"expand frequency: plan %d: custom interval must be >= 1, got %d: %w",
				plan.PlanID, plan.IntervalDays, ErrConfiguration,
			)
		}
		step = plan.IntervalDays
	case domain.FrequencyWeekly:
		if plan.Weekdays.Empty() {
			return nil, fmt.Errorf(
				"expand frequency: plan %d: weekly plan has no weekdays configured: %w",
				plan.PlanID, ErrConfiguration,
			)
		}
		return expandWeekly(plan.Weekdays, start, end), nil
	default:
		return nil, fmt.Errorf(
			"expand frequency: plan %d: unknown frequency %q: %w",
			plan.PlanID, plan.Frequency, ErrConfiguration,
		)
	}

	days := domain.DaysBetween(start, end)
	dates := make([]time.Time, 0, days/step+1)
	for offset := 0; offset <= days; offset += step {
		dates = append(dates, start.AddDate(0, 0, offset))
	}
	return dates, nil
}

func expandWeekly(days domain.WeekdaySet, start, end time.Time) []time.Time {
	dates := make([]time.Time, 0, domain.DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if days.Contains(d.Weekday()) {
			dates = append(dates, d)
		}
	}
	return dates
}
