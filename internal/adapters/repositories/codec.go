package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"delivery-schedule-service/internal/domain"
)

// Storage encodings for the value types the admin layer manages as
// free-form text: postal codes are comma-joined, weekday sets are
// comma-joined integers (time.Weekday values), polygons are JSON
// [[lon,lat],...] rings, dates are "2006-01-02".

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string { return domain.DateOf(t).Format(dateLayout) }

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func parseDatePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil, nil
	}
	t, err := parseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseTimestampPtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(ns.String))
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", ns.String, err)
	}
	return &t, nil
}

func joinPostalCodes(codes []string) string {
	uniq := make([]string, 0, len(codes))
	seen := map[string]struct{}{}
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	return strings.Join(uniq, ",")
}

func parsePostalCodes(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, c := range strings.Split(s, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			out[c] = struct{}{}
		}
	}
	return out
}

func joinWeekdays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

func parseWeekdays(s string) (domain.WeekdaySet, error) {
	set := domain.WeekdaySet{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("parse weekdays: invalid day %q", part)
		}
		set[time.Weekday(n)] = struct{}{}
	}
	return set, nil
}

func encodePolygon(ring [][]float64) (string, error) {
	if len(ring) == 0 {
		return "", nil
	}
	b, err := json.Marshal(ring)
	if err != nil {
		return "", fmt.Errorf("encode polygon: %w", err)
	}
	return string(b), nil
}

func parsePolygon(ns sql.NullString) (domain.Polygon, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil, nil
	}

	var ring [][]float64
	if err := json.Unmarshal([]byte(ns.String), &ring); err != nil {
		return nil, fmt.Errorf("parse polygon: %w", err)
	}

	poly := make(domain.Polygon, 0, len(ring))
	for i, pt := range ring {
		if len(pt) != 2 {
			return nil, fmt.Errorf("parse polygon: vertex %d has %d components, want 2", i, len(pt))
		}
		poly = append(poly, domain.Coordinates{Lon: pt[0], Lat: pt[1]})
	}
	return poly, nil
}

func windowFrom(start, end sql.NullString) *domain.TimeWindow {
	if !start.Valid || !end.Valid || start.String == "" || end.String == "" {
		return nil
	}
	return &domain.TimeWindow{Start: start.String, End: end.String}
}
