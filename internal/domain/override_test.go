package domain

import (
	"testing"
	"time"
)

func TestOverrideInForce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		o    ZoneOverride
		want bool
	}{
		{"active no expiry", ZoneOverride{Active: true}, true},
		{"inactive", ZoneOverride{Active: false}, false},
		{"active future expiry", ZoneOverride{Active: true, ExpiresAt: &future}, true},
		// Expiry is authoritative over a stale active flag.
		{"active but expired", ZoneOverride{Active: true, ExpiresAt: &past}, false},
		{"expires exactly now", ZoneOverride{Active: true, ExpiresAt: &now}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.o.InForce(now); got != tc.want {
				t.Errorf("InForce = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPickOverrideNewestWins(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	overrides := []ZoneOverride{
		{OverrideID: 1, ZoneID: 10, Active: true, CreatedAt: now.Add(-48 * time.Hour)},
		{OverrideID: 2, ZoneID: 20, Active: true, CreatedAt: now.Add(-24 * time.Hour)},
		// Newer but expired; must lose.
		{OverrideID: 3, ZoneID: 30, Active: true, ExpiresAt: &past, CreatedAt: now.Add(-1 * time.Hour)},
	}

	picked, ok := PickOverride(overrides, now)
	if !ok {
		t.Fatal("expected an override to be picked")
	}
	if picked.OverrideID != 2 {
		t.Errorf("picked override %d, want 2", picked.OverrideID)
	}
}

func TestPickOverrideNoneInForce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, ok := PickOverride([]ZoneOverride{{OverrideID: 1, Active: false}}, now); ok {
		t.Error("expected no override picked")
	}
	if _, ok := PickOverride(nil, now); ok {
		t.Error("expected no override picked from empty input")
	}
}

func TestPauseIntervalCovers(t *testing.T) {
	start := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC)
	bounded := PauseInterval{Start: start, End: &end}

	if bounded.Covers(start.AddDate(0, 0, -1)) {
		t.Error("day before the hold should not be covered")
	}
	if !bounded.Covers(start) || !bounded.Covers(end) {
		t.Error("hold bounds are inclusive")
	}
	if bounded.Covers(end.AddDate(0, 0, 1)) {
		t.Error("day after the hold should not be covered")
	}

	open := PauseInterval{Start: start}
	if !open.Covers(start.AddDate(0, 0, 365)) {
		t.Error("open-ended hold should cover the far future")
	}
}
