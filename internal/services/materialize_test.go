package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"delivery-schedule-service/internal/adapters/dispatch"
	"delivery-schedule-service/internal/adapters/lock"
	"delivery-schedule-service/internal/domain"
	"delivery-schedule-service/internal/ports"
)

type fakeZoneRepo struct{ zones []domain.Zone }

func (f *fakeZoneRepo) ListActiveZones(context.Context) ([]domain.Zone, error) {
	return f.zones, nil
}

type fakeOverrideRepo struct {
	byAddress map[int][]domain.ZoneOverride
	byUser    map[int][]domain.ZoneOverride
}

func (f *fakeOverrideRepo) ListForAddress(_ context.Context, id int) ([]domain.ZoneOverride, error) {
	return f.byAddress[id], nil
}

func (f *fakeOverrideRepo) ListForUser(_ context.Context, id int) ([]domain.ZoneOverride, error) {
	return f.byUser[id], nil
}

type fakeAddressRepo struct{ addresses map[int]domain.Address }

func (f *fakeAddressRepo) GetAddress(_ context.Context, id int) (domain.Address, error) {
	addr, ok := f.addresses[id]
	if !ok {
		return domain.Address{}, ports.ErrNotFound
	}
	return addr, nil
}

type fakeSubscriptionRepo struct{ subs map[int]domain.Subscription }

func (f *fakeSubscriptionRepo) GetSubscription(_ context.Context, id int) (domain.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return domain.Subscription{}, ports.ErrNotFound
	}
	return sub, nil
}

func (f *fakeSubscriptionRepo) ListSchedulable(context.Context) ([]domain.Subscription, error) {
	var out []domain.Subscription
	for _, s := range f.subs {
		if s.Status != domain.SubscriptionCancelled {
			out = append(out, s)
		}
	}
	return out, nil
}

// memOccurrenceRepo backs the materializer tests with the same duplicate
// semantics the database adapters enforce.
type memOccurrenceRepo struct {
	rows   []domain.DeliveryOccurrence
	nextID int64
}

func (m *memOccurrenceRepo) ListDates(_ context.Context, subID int, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, r := range m.rows {
		if r.SubscriptionID == subID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r.Date)
		}
	}
	return out, nil
}

func (m *memOccurrenceRepo) LastDate(_ context.Context, subID int) (time.Time, bool, error) {
	var last time.Time
	found := false
	for _, r := range m.rows {
		if r.SubscriptionID == subID && (!found || r.Date.After(last)) {
			last = r.Date
			found = true
		}
	}
	return last, found, nil
}

func (m *memOccurrenceRepo) Create(_ context.Context, occ *domain.DeliveryOccurrence) error {
	for _, r := range m.rows {
		if r.SubscriptionID == occ.SubscriptionID && r.Date.Equal(occ.Date) {
			return ports.ErrDuplicateDate
		}
	}
	m.nextID++
	occ.OccurrenceID = m.nextID
	m.rows = append(m.rows, *occ)
	return nil
}

func (m *memOccurrenceRepo) List(_ context.Context, subID int, from, to time.Time) ([]domain.DeliveryOccurrence, error) {
	var out []domain.DeliveryOccurrence
	for _, r := range m.rows {
		if r.SubscriptionID == subID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memOccurrenceRepo) Cancel(_ context.Context, subID int, d time.Time) error {
	for i, r := range m.rows {
		if r.SubscriptionID == subID && r.Date.Equal(d) {
			m.rows[i].Status = domain.OccurrenceCancelled
			return nil
		}
	}
	return ports.ErrNotFound
}

// blindOccurrenceRepo hides existing rows from the pre-insert diff so
// every candidate goes through Create, exercising the constraint path.
type blindOccurrenceRepo struct{ *memOccurrenceRepo }

func (b *blindOccurrenceRepo) ListDates(context.Context, int, time.Time, time.Time) ([]time.Time, error) {
	return nil, nil
}

func (b *blindOccurrenceRepo) LastDate(context.Context, int) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func newTestMaterializer(occ ports.OccurrenceRepository) (*Materializer, *dispatch.MockOrderDispatcher) {
	dispatcher := dispatch.NewMockOrderDispatcher()

	zones := &fakeZoneRepo{zones: []domain.Zone{
		{ZoneID: 1, Name: "North", Active: true, PostalCodes: postalSet("85009")},
	}}
	addresses := &fakeAddressRepo{addresses: map[int]domain.Address{
		1: {AddressID: 1, UserID: 9, PostalCode: "85009"},
	}}
	subs := &fakeSubscriptionRepo{subs: map[int]domain.Subscription{
		1: {
			SubscriptionID: 1,
			UserID:         9,
			AddressID:      1,
			Plan:           domain.Plan{PlanID: 1, Frequency: domain.FrequencyDaily},
			StartDate:      date(2026, 1, 5),
			Status:         domain.SubscriptionActive,
		},
	}}

	m := &Materializer{
		Zones:         zones,
		Overrides:     &fakeOverrideRepo{},
		Addresses:     addresses,
		Subscriptions: subs,
		Occurrences:   occ,
		Locker:        lock.NewMemoryLocker(),
		Dispatcher:    dispatcher,
		LockWait:      50 * time.Millisecond,
		Now:           func() time.Time { return date(2026, 1, 5) },
	}
	return m, dispatcher
}

func TestExtendScheduleCreatesAndIsIdempotent(t *testing.T) {
	occ := &memOccurrenceRepo{}
	m, dispatcher := newTestMaterializer(occ)
	ctx := context.Background()

	report, err := m.ExtendSchedule(ctx, 1, date(2026, 1, 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Created != 5 {
		t.Errorf("Created = %d, want 5", report.Created)
	}
	if dispatcher.Count() != 5 {
		t.Errorf("dispatched %d occurrences, want 5", dispatcher.Count())
	}

	// Same inputs again: zero new rows, every date already taken.
	report, err = m.ExtendSchedule(ctx, 1, date(2026, 1, 9))
	if err != nil {
		t.Fatalf("unexpected error on rerun: %v", err)
	}
	if report.Created != 0 {
		t.Errorf("rerun Created = %d, want 0", report.Created)
	}
	if len(occ.rows) != 5 {
		t.Errorf("stored %d rows after rerun, want 5", len(occ.rows))
	}
}

func TestExtendScheduleExtendsFromLastDate(t *testing.T) {
	occ := &memOccurrenceRepo{}
	m, _ := newTestMaterializer(occ)
	ctx := context.Background()

	if _, err := m.ExtendSchedule(ctx, 1, date(2026, 1, 7)); err != nil {
		t.Fatalf("first run: %v", err)
	}

	report, err := m.ExtendSchedule(ctx, 1, date(2026, 1, 10))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Created != 3 {
		t.Errorf("Created = %d, want 3 new dates past the last one", report.Created)
	}
	if report.SkippedExisting != 0 {
		t.Errorf("SkippedExisting = %d, want 0; window should start after the last date", report.SkippedExisting)
	}
}

func TestExtendScheduleDuplicateInsertIsSkip(t *testing.T) {
	inner := &memOccurrenceRepo{}
	m, _ := newTestMaterializer(&blindOccurrenceRepo{inner})
	ctx := context.Background()

	seeded := &domain.DeliveryOccurrence{
		SubscriptionID: 1,
		Date:           date(2026, 1, 6),
		Status:         domain.OccurrenceScheduled,
		ZoneID:         1,
	}
	if err := inner.Create(ctx, seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	report, err := m.ExtendSchedule(ctx, 1, date(2026, 1, 7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SkippedExisting != 1 {
		t.Errorf("SkippedExisting = %d, want 1 from the rejected insert", report.SkippedExisting)
	}
	if report.Created != 2 {
		t.Errorf("Created = %d, want 2", report.Created)
	}
	if len(report.Failures) != 0 {
		t.Errorf("duplicate insert must not be reported as a failure: %v", report.Failures)
	}
}

func TestExtendScheduleDispatchFailureLeavesRow(t *testing.T) {
	occ := &memOccurrenceRepo{}
	m, dispatcher := newTestMaterializer(occ)
	dispatcher.FailDates["2026-01-06"] = true
	ctx := context.Background()

	report, err := m.ExtendSchedule(ctx, 1, date(2026, 1, 7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Created != 3 {
		t.Errorf("Created = %d, want 3; a dispatch failure must not block later dates", report.Created)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %v", report.Failures)
	}
	if report.Failures[0].Stage != "dispatch" {
		t.Errorf("failure stage = %q, want dispatch", report.Failures[0].Stage)
	}
	// The committed row stands even though dispatch failed.
	if len(occ.rows) != 3 {
		t.Errorf("stored %d rows, want 3", len(occ.rows))
	}
}

func TestExtendSchedulePauseAndCalendarCounts(t *testing.T) {
	occ := &memOccurrenceRepo{}
	m, _ := newTestMaterializer(occ)
	ctx := context.Background()

	// Zone rests on Sundays; subscription holds Jan 6-7.
	zones := m.Zones.(*fakeZoneRepo)
	zones.zones[0].ActiveDays = domain.NewWeekdaySet(
		time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	)
	subs := m.Subscriptions.(*fakeSubscriptionRepo)
	sub := subs.subs[1]
	end := date(2026, 1, 7)
	sub.Pauses = []domain.PauseInterval{{Start: date(2026, 1, 6), End: &end}}
	subs.subs[1] = sub

	// Jan 5-11: Sunday the 11th is off-calendar, the 6th and 7th are held.
	report, err := m.ExtendSchedule(ctx, 1, date(2026, 1, 11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SkippedCalendar != 1 {
		t.Errorf("SkippedCalendar = %d, want 1", report.SkippedCalendar)
	}
	if report.SkippedPaused != 2 {
		t.Errorf("SkippedPaused = %d, want 2", report.SkippedPaused)
	}
	if report.Created != 4 {
		t.Errorf("Created = %d, want 4", report.Created)
	}
}

func TestExtendScheduleUnserviceableAborts(t *testing.T) {
	occ := &memOccurrenceRepo{}
	m, _ := newTestMaterializer(occ)
	ctx := context.Background()

	addresses := m.Addresses.(*fakeAddressRepo)
	addr := addresses.addresses[1]
	addr.PostalCode = "00000"
	addresses.addresses[1] = addr

	_, err := m.ExtendSchedule(ctx, 1, date(2026, 1, 9))
	if !errors.Is(err, ErrUnserviceable) {
		t.Fatalf("expected ErrUnserviceable, got %v", err)
	}
	if len(occ.rows) != 0 {
		t.Errorf("no rows should be written for an unserviceable address, got %d", len(occ.rows))
	}
}

func TestExtendScheduleCancelledIsNoop(t *testing.T) {
	occ := &memOccurrenceRepo{}
	m, dispatcher := newTestMaterializer(occ)
	ctx := context.Background()

	subs := m.Subscriptions.(*fakeSubscriptionRepo)
	sub := subs.subs[1]
	sub.Status = domain.SubscriptionCancelled
	subs.subs[1] = sub

	report, err := m.ExtendSchedule(ctx, 1, date(2026, 1, 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Created != 0 || len(occ.rows) != 0 || dispatcher.Count() != 0 {
		t.Error("cancelled subscription must not materialize anything")
	}
}

func TestExtendScheduleLockContention(t *testing.T) {
	occ := &memOccurrenceRepo{}
	m, _ := newTestMaterializer(occ)
	m.LockWait = 20 * time.Millisecond
	ctx := context.Background()

	unlock, err := m.Locker.Acquire(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("pre-acquire: %v", err)
	}
	defer unlock(ctx)

	_, err = m.ExtendSchedule(ctx, 1, date(2026, 1, 9))
	if !errors.Is(err, ports.ErrLockContention) {
		t.Fatalf("expected ErrLockContention, got %v", err)
	}
}

func TestExtendAll(t *testing.T) {
	occ := &memOccurrenceRepo{}
	m, _ := newTestMaterializer(occ)
	ctx := context.Background()

	subs := m.Subscriptions.(*fakeSubscriptionRepo)
	subs.subs[2] = domain.Subscription{
		SubscriptionID: 2,
		UserID:         9,
		AddressID:      1,
		Plan:           domain.Plan{PlanID: 2, Frequency: domain.FrequencyAlternate},
		StartDate:      date(2026, 1, 5),
		Status:         domain.SubscriptionActive,
	}
	subs.subs[3] = domain.Subscription{
		SubscriptionID: 3,
		UserID:         9,
		AddressID:      1,
		Plan:           domain.Plan{PlanID: 1, Frequency: domain.FrequencyDaily},
		StartDate:      date(2026, 1, 5),
		Status:         domain.SubscriptionCancelled,
	}

	reports, err := m.ExtendAll(ctx, date(2026, 1, 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected reports for the 2 schedulable subscriptions, got %d", len(reports))
	}
	if reports[0].SubscriptionID != 1 || reports[1].SubscriptionID != 2 {
		t.Errorf("reports out of order: %d, %d", reports[0].SubscriptionID, reports[1].SubscriptionID)
	}
	if reports[0].Created != 5 {
		t.Errorf("daily subscription Created = %d, want 5", reports[0].Created)
	}
	if reports[1].Created != 3 {
		t.Errorf("alternate-day subscription Created = %d, want 3", reports[1].Created)
	}
}

func TestExtendAllRecordsPerSubscriptionErrors(t *testing.T) {
	occ := &memOccurrenceRepo{}
	m, _ := newTestMaterializer(occ)
	ctx := context.Background()

	subs := m.Subscriptions.(*fakeSubscriptionRepo)
	subs.subs[2] = domain.Subscription{
		SubscriptionID: 2,
		UserID:         9,
		AddressID:      1,
		Plan:           domain.Plan{PlanID: 3, Frequency: domain.FrequencyWeekly}, // empty weekday set
		StartDate:      date(2026, 1, 5),
		Status:         domain.SubscriptionActive,
	}

	reports, err := m.ExtendAll(ctx, date(2026, 1, 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Err != "" {
		t.Errorf("healthy subscription carries an error: %q", reports[0].Err)
	}
	if reports[1].Err == "" {
		t.Error("misconfigured subscription should carry its abort reason")
	}
	if reports[0].Created != 5 {
		t.Errorf("one bad subscription must not stop the batch; Created = %d", reports[0].Created)
	}
}
