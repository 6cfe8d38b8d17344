package domain

import "time"

// WeekdaySet is an unordered set of weekdays.
// On a Zone an empty set means "every day"; on a weekly Plan an empty
// set is a configuration error caught by the frequency expander.
type WeekdaySet map[time.Weekday]struct{}

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	s := make(WeekdaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

func (s WeekdaySet) Contains(d time.Weekday) bool {
	_, ok := s[d]
	return ok
}

func (s WeekdaySet) Empty() bool { return len(s) == 0 }

// TimeWindow is a zone's daily service window ("06:00" to "09:00").
// It annotates emitted occurrences for the downstream order and never
// filters candidate dates.
type TimeWindow struct {
	Start string
	End   string
}

// Zone is an operational delivery-coverage area. Zones are reference
// data owned by the administrative layer; the engine only reads them
// and treats each value as an immutable per-run snapshot.
type Zone struct {
	ZoneID        int
	Name          string
	PostalCodes   map[string]struct{}
	Boundary      Polygon // optional; nil for postal-only zones
	ActiveDays    WeekdaySet
	Window        *TimeWindow
	Active        bool
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

func (z Zone) HasPostalCode(code string) bool {
	_, ok := z.PostalCodes[code]
	return ok
}

func (z Zone) ContainsPoint(c Coordinates) bool {
	return z.Boundary.Valid() && z.Boundary.Contains(c)
}

// ServesOn reports whether the zone can deliver on the given calendar day:
// the day falls inside the effective date range and on an active weekday.
func (z Zone) ServesOn(d time.Time) bool {
	day := DateOf(d)

	if z.EffectiveFrom != nil && day.Before(DateOf(*z.EffectiveFrom)) {
		return false
	}
	if z.EffectiveTo != nil && day.After(DateOf(*z.EffectiveTo)) {
		return false
	}

	if z.ActiveDays.Empty() {
		return true
	}
	return z.ActiveDays.Contains(day.Weekday())
}
