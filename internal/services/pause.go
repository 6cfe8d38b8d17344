package services

import (
	"delivery-schedule-service/internal/domain"
	"time"
)

// FilterByPauses removes dates covered by any pause interval and counts
// the removals. Suppressed dates are never rescheduled elsewhere: the
// next run recomputes the frequency from the live window, so the pattern
// simply continues past the pause.
func FilterByPauses(dates []time.Time, pauses []domain.PauseInterval) (kept []time.Time, dropped int) {
	kept = make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if paused(d, pauses) {
			dropped++
			continue
		}
		kept = append(kept, d)
	}
	return kept, dropped
}

func paused(d time.Time, pauses []domain.PauseInterval) bool {
	for _, p := range pauses {
		if p.Covers(d) {
			return true
		}
	}
	return false
}
