package services

import (
	"delivery-schedule-service/internal/domain"
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandDaily(t *testing.T) {
	plan := domain.Plan{PlanID: 1, Frequency: domain.FrequencyDaily}

	dates, err := ExpandFrequency(plan, date(2026, 1, 5), date(2026, 1, 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 5 {
		t.Fatalf("expected 5 dates, got %d", len(dates))
	}
	for i, d := range dates {
		want := date(2026, 1, 5+i)
		if !d.Equal(want) {
			t.Errorf("dates[%d] = %v, want %v", i, d, want)
		}
	}
}

func TestExpandWeekly(t *testing.T) {
	// 2026-01-05 is a Monday. Mon+Thu over 14 days gives exactly 4 dates.
	plan := domain.Plan{
		PlanID:    2,
		Frequency: domain.FrequencyWeekly,
		Weekdays:  domain.NewWeekdaySet(time.Monday, time.Thursday),
	}

	dates, err := ExpandFrequency(plan, date(2026, 1, 5), date(2026, 1, 18))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []time.Time{
		date(2026, 1, 5),  // Mon
		date(2026, 1, 8),  // Thu
		date(2026, 1, 12), // Mon
		date(2026, 1, 15), // Thu
	}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d: %v", len(want), len(dates), dates)
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], want[i])
		}
	}
}

func TestExpandWeeklyEmptySetIsError(t *testing.T) {
	plan := domain.Plan{PlanID: 3, Frequency: domain.FrequencyWeekly}

	_, err := ExpandFrequency(plan, date(2026, 1, 5), date(2026, 1, 18))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestExpandAlternateAnchorsToWindowStart(t *testing.T) {
	plan := domain.Plan{PlanID: 4, Frequency: domain.FrequencyAlternate}

	dates, err := ExpandFrequency(plan, date(2026, 1, 5), date(2026, 1, 11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Time{date(2026, 1, 5), date(2026, 1, 7), date(2026, 1, 9), date(2026, 1, 11)}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], want[i])
		}
	}

	// Shifting the window start by one day flips the parity.
	shifted, err := ExpandFrequency(plan, date(2026, 1, 6), date(2026, 1, 11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantShifted := []time.Time{date(2026, 1, 6), date(2026, 1, 8), date(2026, 1, 10)}
	if len(shifted) != len(wantShifted) {
		t.Fatalf("expected %d shifted dates, got %d", len(wantShifted), len(shifted))
	}
	for i := range wantShifted {
		if !shifted[i].Equal(wantShifted[i]) {
			t.Errorf("shifted[%d] = %v, want %v", i, shifted[i], wantShifted[i])
		}
	}
}

func TestExpandCustom(t *testing.T) {
	plan := domain.Plan{PlanID: 5, Frequency: domain.FrequencyCustom, IntervalDays: 3}

	dates, err := ExpandFrequency(plan, date(2026, 1, 1), date(2026, 1, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Time{date(2026, 1, 1), date(2026, 1, 4), date(2026, 1, 7), date(2026, 1, 10)}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], want[i])
		}
	}
}

func TestExpandCustomIntervalOneIsDaily(t *testing.T) {
	plan := domain.Plan{PlanID: 6, Frequency: domain.FrequencyCustom, IntervalDays: 1}

	dates, err := ExpandFrequency(plan, date(2026, 1, 1), date(2026, 1, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 3 {
		t.Fatalf("expected 3 dates, got %d", len(dates))
	}
}

func TestExpandCustomInvalidInterval(t *testing.T) {
	plan := domain.Plan{PlanID: 7, Frequency: domain.FrequencyCustom, IntervalDays: 0}

	_, err := ExpandFrequency(plan, date(2026, 1, 1), date(2026, 1, 10))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestExpandEmptyWindow(t *testing.T) {
	plan := domain.Plan{PlanID: 8, Frequency: domain.FrequencyDaily}

	dates, err := ExpandFrequency(plan, date(2026, 1, 10), date(2026, 1, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected no dates for inverted window, got %d", len(dates))
	}
}

func TestExpandSingleDayWindow(t *testing.T) {
	plan := domain.Plan{PlanID: 9, Frequency: domain.FrequencyAlternate}

	dates, err := ExpandFrequency(plan, date(2026, 1, 5), date(2026, 1, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 1 || !dates[0].Equal(date(2026, 1, 5)) {
		t.Fatalf("expected exactly the window day, got %v", dates)
	}
}
