package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-schedule-service/internal/domain"
	"delivery-schedule-service/internal/ports"
)

// SQLite-backed implementation of the SubscriptionRepository port.
// A subscription is loaded with its plan and pause intervals attached so
// the engine sees one consistent snapshot.
type SqliteSubscriptionRepository struct{ DB *sql.DB }

func NewSqliteSubscriptionRepository(db *sql.DB) *SqliteSubscriptionRepository {
	return &SqliteSubscriptionRepository{DB: db}
}

func (s *SqliteSubscriptionRepository) GetSubscription(ctx context.Context, subscriptionID int) (domain.Subscription, error) {
	if s.DB == nil {
		return domain.Subscription{}, errors.New("sqlite subscription repository: DB is nil")
	}

	query := `
	SELECT subscription_id, user_id, address_id, plan_id, start_date, status, cancelled_at
	FROM subscriptions
	WHERE subscription_id = ?;
	`

	sub, planID, err := s.scanSubscription(s.DB.QueryRowContext(ctx, query, subscriptionID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subscription{}, fmt.Errorf("get subscription %d: %w", subscriptionID, ports.ErrNotFound)
	}
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("get subscription %d: %w", subscriptionID, err)
	}

	if sub.Plan, err = s.getPlan(ctx, planID); err != nil {
		return domain.Subscription{}, fmt.Errorf("get subscription %d: %w", subscriptionID, err)
	}
	if sub.Pauses, err = s.listPauses(ctx, subscriptionID); err != nil {
		return domain.Subscription{}, fmt.Errorf("get subscription %d: %w", subscriptionID, err)
	}

	return sub, nil
}

// Return subscriptions eligible for schedule extension. Cancelled
// subscriptions never come back; their occurrences are already fenced.
func (s *SqliteSubscriptionRepository) ListSchedulable(ctx context.Context) ([]domain.Subscription, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite subscription repository: DB is nil")
	}

	query := `
	SELECT subscription_id
	FROM subscriptions
	WHERE status IN ('active', 'paused')
	ORDER BY subscription_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list schedulable: query subscriptions table: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0, 64)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list schedulable: scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list schedulable: row iteration: %w", err)
	}

	subs := make([]domain.Subscription, 0, len(ids))
	for _, id := range ids {
		sub, err := s.GetSubscription(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list schedulable: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func (s *SqliteSubscriptionRepository) scanSubscription(row rowScanner) (domain.Subscription, int, error) {
	var (
		sub         domain.Subscription
		planID      int
		startDate   string
		status      string
		cancelledAt sql.NullString
	)
	if err := row.Scan(
		&sub.SubscriptionID, &sub.UserID, &sub.AddressID, &planID,
		&startDate, &status, &cancelledAt,
	); err != nil {
		return domain.Subscription{}, 0, err
	}

	start, err := parseDate(startDate)
	if err != nil {
		return domain.Subscription{}, 0, err
	}
	sub.StartDate = start
	sub.Status = domain.SubscriptionStatus(status)

	if sub.CancelledAt, err = parseDatePtr(cancelledAt); err != nil {
		return domain.Subscription{}, 0, err
	}

	return sub, planID, nil
}

func (s *SqliteSubscriptionRepository) getPlan(ctx context.Context, planID int) (domain.Plan, error) {
	query := `
	SELECT plan_id, name, frequency, interval_days, weekdays, min_deliveries
	FROM plans
	WHERE plan_id = ?;
	`

	var (
		plan      domain.Plan
		frequency string
		weekdays  string
	)
	err := s.DB.QueryRowContext(ctx, query, planID).Scan(
		&plan.PlanID, &plan.Name, &frequency, &plan.IntervalDays,
		&weekdays, &plan.MinDeliveries,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Plan{}, fmt.Errorf("get plan %d: %w", planID, ports.ErrNotFound)
	}
	if err != nil {
		return domain.Plan{}, fmt.Errorf("get plan %d: %w", planID, err)
	}

	plan.Frequency = domain.FrequencyType(frequency)
	if plan.Weekdays, err = parseWeekdays(weekdays); err != nil {
		return domain.Plan{}, fmt.Errorf("get plan %d: %w", planID, err)
	}

	return plan, nil
}

func (s *SqliteSubscriptionRepository) listPauses(ctx context.Context, subscriptionID int) ([]domain.PauseInterval, error) {
	query := `
	SELECT start_date, end_date
	FROM subscription_pauses
	WHERE subscription_id = ?
	ORDER BY start_date;
	`
	rows, err := s.DB.QueryContext(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("list pauses: query subscription_pauses table: %w", err)
	}
	defer rows.Close()

	pauses := make([]domain.PauseInterval, 0, 2)
	for rows.Next() {
		var (
			startDate string
			endDate   sql.NullString
		)
		if err := rows.Scan(&startDate, &endDate); err != nil {
			return nil, fmt.Errorf("list pauses: scan row: %w", err)
		}

		var p domain.PauseInterval
		if p.Start, err = parseDate(startDate); err != nil {
			return nil, fmt.Errorf("list pauses: %w", err)
		}
		if p.End, err = parseDatePtr(endDate); err != nil {
			return nil, fmt.Errorf("list pauses: %w", err)
		}
		pauses = append(pauses, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pauses: row iteration: %w", err)
	}

	return pauses, nil
}
