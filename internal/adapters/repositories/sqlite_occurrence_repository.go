package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"delivery-schedule-service/internal/domain"
	"delivery-schedule-service/internal/ports"
)

// SQLite-backed implementation of the OccurrenceRepository port.
// The UNIQUE(subscription_id, delivery_date) constraint turns a racing
// duplicate insert into ErrDuplicateDate instead of corrupt data.
type SqliteOccurrenceRepository struct{ DB *sql.DB }

func NewSqliteOccurrenceRepository(db *sql.DB) *SqliteOccurrenceRepository {
	return &SqliteOccurrenceRepository{DB: db}
}

func (s *SqliteOccurrenceRepository) ListDates(
	ctx context.Context,
	subscriptionID int,
	from, to time.Time,
) ([]time.Time, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite occurrence repository: DB is nil")
	}

	query := `
	SELECT delivery_date
	FROM delivery_occurrences
	WHERE subscription_id = ?
		AND delivery_date >= ?
		AND delivery_date <= ?
	ORDER BY delivery_date;
	`
	rows, err := s.DB.QueryContext(ctx, query, subscriptionID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("list occurrence dates: query: %w", err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0, 32)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("list occurrence dates: scan row: %w", err)
		}
		d, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("list occurrence dates: %w", err)
		}
		dates = append(dates, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list occurrence dates: row iteration: %w", err)
	}

	return dates, nil
}

func (s *SqliteOccurrenceRepository) LastDate(ctx context.Context, subscriptionID int) (time.Time, bool, error) {
	if s.DB == nil {
		return time.Time{}, false, errors.New("sqlite occurrence repository: DB is nil")
	}

	query := `
	SELECT MAX(delivery_date)
	FROM delivery_occurrences
	WHERE subscription_id = ?;
	`

	var raw sql.NullString
	if err := s.DB.QueryRowContext(ctx, query, subscriptionID).Scan(&raw); err != nil {
		return time.Time{}, false, fmt.Errorf("last occurrence date: query: %w", err)
	}
	if !raw.Valid {
		return time.Time{}, false, nil
	}

	d, err := parseDate(raw.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last occurrence date: %w", err)
	}
	return d, true, nil
}

func (s *SqliteOccurrenceRepository) Create(ctx context.Context, occ *domain.DeliveryOccurrence) error {
	if s.DB == nil {
		return errors.New("sqlite occurrence repository: DB is nil")
	}

	query := `
	INSERT INTO delivery_occurrences (
		subscription_id, delivery_date, status, zone_id, window_start, window_end, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`

	var winStart, winEnd any
	if occ.Window != nil {
		winStart, winEnd = occ.Window.Start, occ.Window.End
	}

	res, err := s.DB.ExecContext(ctx, query,
		occ.SubscriptionID, formatDate(occ.Date), string(occ.Status),
		occ.ZoneID, winStart, winEnd, occ.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf(
				"create occurrence: subscription %d date %s: %w",
				occ.SubscriptionID, formatDate(occ.Date), ports.ErrDuplicateDate,
			)
		}
		return fmt.Errorf("create occurrence: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		occ.OccurrenceID = id
	}

	return nil
}

func (s *SqliteOccurrenceRepository) List(
	ctx context.Context,
	subscriptionID int,
	from, to time.Time,
) ([]domain.DeliveryOccurrence, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite occurrence repository: DB is nil")
	}

	query := `
	SELECT occurrence_id, subscription_id, delivery_date, status,
		zone_id, window_start, window_end, created_at
	FROM delivery_occurrences
	WHERE subscription_id = ?
		AND delivery_date >= ?
		AND delivery_date <= ?
	ORDER BY delivery_date;
	`
	rows, err := s.DB.QueryContext(ctx, query, subscriptionID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("list occurrences: query: %w", err)
	}
	defer rows.Close()

	occs := make([]domain.DeliveryOccurrence, 0, 32)
	for rows.Next() {
		var (
			occ              domain.DeliveryOccurrence
			rawDate, rawTime string
			status           string
			winStart, winEnd sql.NullString
		)
		if err := rows.Scan(
			&occ.OccurrenceID, &occ.SubscriptionID, &rawDate, &status,
			&occ.ZoneID, &winStart, &winEnd, &rawTime,
		); err != nil {
			return nil, fmt.Errorf("list occurrences: scan row: %w", err)
		}

		if occ.Date, err = parseDate(rawDate); err != nil {
			return nil, fmt.Errorf("list occurrences: %w", err)
		}
		occ.Status = domain.OccurrenceStatus(status)
		occ.Window = windowFrom(winStart, winEnd)
		if occ.CreatedAt, err = time.Parse(time.RFC3339, rawTime); err != nil {
			return nil, fmt.Errorf("list occurrences: parse created_at: %w", err)
		}

		occs = append(occs, occ)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list occurrences: row iteration: %w", err)
	}

	return occs, nil
}

func (s *SqliteOccurrenceRepository) Cancel(ctx context.Context, subscriptionID int, date time.Time) error {
	if s.DB == nil {
		return errors.New("sqlite occurrence repository: DB is nil")
	}

	query := `
	UPDATE delivery_occurrences
	SET status = 'cancelled'
	WHERE subscription_id = ? AND delivery_date = ?;
	`
	res, err := s.DB.ExecContext(ctx, query, subscriptionID, formatDate(date))
	if err != nil {
		return fmt.Errorf("cancel occurrence: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel occurrence: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf(
			"cancel occurrence: subscription %d date %s: %w",
			subscriptionID, formatDate(date), ports.ErrNotFound,
		)
	}

	return nil
}
