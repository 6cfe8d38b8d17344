package services

import (
	"context"
	"delivery-schedule-service/internal/domain"
	"delivery-schedule-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"time"
)

// DateFailure records one per-date problem inside an otherwise
// successful run. Stage is "create" (row not written) or "dispatch"
// (row written, hand-off failed and is retried downstream).
type DateFailure struct {
	Date  time.Time
	Stage string
	Err   string
}

// RunReport is the accounting of one schedule-extension run. Every
// pruning and skip decision is counted individually; nothing is
// corrected silently.
type RunReport struct {
	SubscriptionID  int
	Created         int
	SkippedExisting int
	SkippedPaused   int
	SkippedCalendar int
	Failures        []DateFailure
	Err             string // run-level abort reason, set by batch runs
}

// Materializer orchestrates zone resolution, frequency expansion,
// filtering and the idempotent diff against already-materialized
// occurrences, under a per-subscription exclusivity lock.
type Materializer struct {
	Zones         ports.ZoneRepository
	Overrides     ports.OverrideRepository
	Addresses     ports.AddressRepository
	Subscriptions ports.SubscriptionRepository
	Occurrences   ports.OccurrenceRepository
	Locker        ports.SubscriptionLocker
	Dispatcher    ports.OrderDispatcher

	// LockWait bounds how long a run blocks on a contended lock
	// before giving up with ErrLockContention.
	LockWait time.Duration

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (m *Materializer) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// ExtendSchedule materializes every missing delivery occurrence for one
// subscription up to the horizon date, inclusive.
//
// Reads of zone/override/plan/pause data are taken once at run start as
// a consistent snapshot; edits land in the next run, never retroactively.
// Re-running with the same inputs creates zero new rows.
func (m *Materializer) ExtendSchedule(
	ctx context.Context,
	subscriptionID int,
	horizon time.Time,
) (RunReport, error) {
	report := RunReport{SubscriptionID: subscriptionID}

	unlock, err := m.Locker.Acquire(ctx, subscriptionID, m.LockWait)
	if err != nil {
		return report, fmt.Errorf("extend schedule: subscription %d: %w", subscriptionID, err)
	}
	defer func() {
		if err := unlock(ctx); err != nil {
			log.Printf("unlock failed: subscription_id=%d err=%v", subscriptionID, err)
		}
	}()

	sub, err := m.Subscriptions.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return report, fmt.Errorf("extend schedule: get subscription %d: %w", subscriptionID, err)
	}

	// Cancellation halts generation permanently; existing rows stand.
	if sub.Status == domain.SubscriptionCancelled {
		return report, nil
	}

	zone, err := m.resolveSubscriptionZone(ctx, sub)
	if err != nil {
		return report, err
	}

	from, to, err := m.window(ctx, sub, horizon)
	if err != nil {
		return report, err
	}
	if from.After(to) {
		return report, nil
	}

	candidates, err := ExpandFrequency(sub.Plan, from, to)
	if err != nil {
		return report, fmt.Errorf("extend schedule: subscription %d: %w", subscriptionID, err)
	}

	candidates, report.SkippedCalendar = FilterByCalendar(candidates, zone)
	candidates, report.SkippedPaused = FilterByPauses(candidates, sub.Pauses)
	if len(candidates) == 0 {
		return report, nil
	}

	existingDates, err := m.Occurrences.ListDates(ctx, subscriptionID, from, to)
	if err != nil {
		return report, fmt.Errorf("extend schedule: list occurrences for subscription %d: %w", subscriptionID, err)
	}
	existing := make(map[time.Time]struct{}, len(existingDates))
	for _, d := range existingDates {
		existing[domain.DateOf(d)] = struct{}{}
	}

	// Candidates minus existing is the idempotence step: a re-run over
	// the same inputs finds every date already taken.
	for _, d := range candidates {
		if _, ok := existing[d]; ok {
			report.SkippedExisting++
			continue
		}
		m.createOne(ctx, &report, sub, zone, d)
	}

	log.Printf(
		"schedule extended: subscription_id=%d created=%d skipped_existing=%d skipped_paused=%d skipped_calendar=%d failures=%d",
		subscriptionID, report.Created, report.SkippedExisting,
		report.SkippedPaused, report.SkippedCalendar, len(report.Failures),
	)
	return report, nil
}

// createOne persists a single occurrence and hands it downstream.
// A failure on one date never blocks the following dates, and a
// dispatch failure leaves the committed row in place.
func (m *Materializer) createOne(
	ctx context.Context,
	report *RunReport,
	sub domain.Subscription,
	zone domain.Zone,
	date time.Time,
) {
	occ := &domain.DeliveryOccurrence{
		SubscriptionID: sub.SubscriptionID,
		Date:           date,
		Status:         domain.OccurrenceScheduled,
		ZoneID:         zone.ZoneID,
		Window:         zone.Window,
		CreatedAt:      m.now(),
	}

	if err := m.Occurrences.Create(ctx, occ); err != nil {
		// A racing duplicate insert is a rejected write, not a failure:
		// the unique constraint is the safety net under the lock.
		if errors.Is(err, ports.ErrDuplicateDate) {
			report.SkippedExisting++
			return
		}
		report.Failures = append(report.Failures, DateFailure{
			Date:  date,
			Stage: "create",
			Err:   err.Error(),
		})
		return
	}
	report.Created++

	if err := m.Dispatcher.Dispatch(ctx, *occ); err != nil {
		report.Failures = append(report.Failures, DateFailure{
			Date:  date,
			Stage: "dispatch",
			Err:   err.Error(),
		})
	}
}

func (m *Materializer) resolveSubscriptionZone(
	ctx context.Context,
	sub domain.Subscription,
) (domain.Zone, error) {
	addr, err := m.Addresses.GetAddress(ctx, sub.AddressID)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("extend schedule: get address %d: %w", sub.AddressID, err)
	}

	zones, err := m.Zones.ListActiveZones(ctx)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("extend schedule: list zones: %w", err)
	}

	addressOv, err := m.Overrides.ListForAddress(ctx, sub.AddressID)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("extend schedule: list address overrides: %w", err)
	}
	userOv, err := m.Overrides.ListForUser(ctx, sub.UserID)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("extend schedule: list user overrides: %w", err)
	}

	zone, err := ResolveZone(addr, zones, addressOv, userOv, m.now())
	if err != nil {
		return domain.Zone{}, fmt.Errorf("extend schedule: subscription %d: %w", sub.SubscriptionID, err)
	}
	return zone, nil
}

// window computes the generation window: the day after the latest
// materialized date (or the subscription start for a fresh one) through
// the horizon, inclusive.
func (m *Materializer) window(
	ctx context.Context,
	sub domain.Subscription,
	horizon time.Time,
) (time.Time, time.Time, error) {
	from := domain.DateOf(sub.StartDate)

	last, ok, err := m.Occurrences.LastDate(ctx, sub.SubscriptionID)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf(
			"extend schedule: last occurrence for subscription %d: %w", sub.SubscriptionID, err,
		)
	}
	if ok {
		next := domain.DateOf(last).AddDate(0, 0, 1)
		if next.After(from) {
			from = next
		}
	}

	return from, domain.DateOf(horizon), nil
}
