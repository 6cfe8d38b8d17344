package services

import (
	"delivery-schedule-service/internal/domain"
	"time"
)

// FilterByCalendar intersects candidate dates with a zone's service
// calendar: dates outside the effective range or on an inactive weekday
// are dropped and counted. An empty active-day set on the zone means the
// zone serves every weekday. The zone's service time window does not
// participate; it only annotates emitted occurrences.
func FilterByCalendar(dates []time.Time, zone domain.Zone) (kept []time.Time, dropped int) {
	kept = make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if zone.ServesOn(d) {
			kept = append(kept, d)
			continue
		}
		dropped++
	}
	return kept, dropped
}
