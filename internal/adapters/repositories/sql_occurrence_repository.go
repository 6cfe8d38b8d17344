package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"delivery-schedule-service/internal/domain"
	"delivery-schedule-service/internal/platform/obs"
	"delivery-schedule-service/internal/ports"
)

// SQLOccurrenceRepository is a Postgres-backed implementation of the
// OccurrenceRepository port for multi-process deployments. The unique
// index on (subscription_id, delivery_date) rejects racing duplicates;
// ON CONFLICT DO NOTHING surfaces them as ErrDuplicateDate.
type SQLOccurrenceRepository struct{ DB *sql.DB }

func NewSQLOccurrenceRepository(db *sql.DB) *SQLOccurrenceRepository {
	return &SQLOccurrenceRepository{DB: db}
}

// InitOccurrenceSchema creates the Postgres occurrence table. The other
// tables belong to the administrative layer's migrations.
func InitOccurrenceSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init occurrence schema: DB is nil")
	}

	query := `
	CREATE TABLE IF NOT EXISTS delivery_occurrences (
		occurrence_id BIGSERIAL PRIMARY KEY,
		subscription_id BIGINT NOT NULL,
		delivery_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'scheduled',
		zone_id BIGINT NOT NULL,
		window_start TEXT,
		window_end TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (subscription_id, delivery_date)
	);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("init occurrence schema: %w", err)
	}

	return nil
}

func (s *SQLOccurrenceRepository) ListDates(
	ctx context.Context,
	subscriptionID int,
	from, to time.Time,
) (_ []time.Time, err error) {
	defer obs.Time(ctx, "occurrences.ListDates")(&err)

	if s.DB == nil {
		return nil, errors.New("sql occurrence repository: DB is nil")
	}

	query := `
	SELECT delivery_date
	FROM delivery_occurrences
	WHERE subscription_id = $1
		AND delivery_date BETWEEN $2 AND $3
	ORDER BY delivery_date;
	`
	rows, err := s.DB.QueryContext(ctx, query, subscriptionID, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("list occurrence dates: query: %w", err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0, 32)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("list occurrence dates: scan row: %w", err)
		}
		dates = append(dates, domain.DateOf(d))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list occurrence dates: row iteration: %w", err)
	}

	return dates, nil
}

func (s *SQLOccurrenceRepository) LastDate(
	ctx context.Context,
	subscriptionID int,
) (_ time.Time, _ bool, err error) {
	defer obs.Time(ctx, "occurrences.LastDate")(&err)

	if s.DB == nil {
		return time.Time{}, false, errors.New("sql occurrence repository: DB is nil")
	}

	query := `
	SELECT MAX(delivery_date)
	FROM delivery_occurrences
	WHERE subscription_id = $1;
	`

	var d sql.NullTime
	if err := s.DB.QueryRowContext(ctx, query, subscriptionID).Scan(&d); err != nil {
		return time.Time{}, false, fmt.Errorf("last occurrence date: query: %w", err)
	}
	if !d.Valid {
		return time.Time{}, false, nil
	}

	return domain.DateOf(d.Time), true, nil
}

func (s *SQLOccurrenceRepository) Create(ctx context.Context, occ *domain.DeliveryOccurrence) (err error) {
	defer obs.Time(ctx, "occurrences.Create")(&err)

	if s.DB == nil {
		return errors.New("sql occurrence repository: DB is nil")
	}

	query := `
	INSERT INTO delivery_occurrences (
		subscription_id, delivery_date, status, zone_id, window_start, window_end, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (subscription_id, delivery_date) DO NOTHING
	RETURNING occurrence_id;
	`

	var winStart, winEnd any
	if occ.Window != nil {
		winStart, winEnd = occ.Window.Start, occ.Window.End
	}

	row := s.DB.QueryRowContext(ctx, query,
		occ.SubscriptionID, domain.DateOf(occ.Date), string(occ.Status),
		occ.ZoneID, winStart, winEnd, occ.CreatedAt.UTC(),
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		// DO NOTHING yields no row: the date is already taken.
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf(
				"create occurrence: subscription %d date %s: %w",
				occ.SubscriptionID, formatDate(occ.Date), ports.ErrDuplicateDate,
			)
		}
		return fmt.Errorf("create occurrence: %w", err)
	}
	occ.OccurrenceID = id

	return nil
}

func (s *SQLOccurrenceRepository) List(
	ctx context.Context,
	subscriptionID int,
	from, to time.Time,
) (_ []domain.DeliveryOccurrence, err error) {
	defer obs.Time(ctx, "occurrences.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sql occurrence repository: DB is nil")
	}

	query := `
	SELECT occurrence_id, subscription_id, delivery_date, status,
		zone_id, window_start, window_end, created_at
	FROM delivery_occurrences
	WHERE subscription_id = $1
		AND delivery_date BETWEEN $2 AND $3
	ORDER BY delivery_date;
	`
	rows, err := s.DB.QueryContext(ctx, query, subscriptionID, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("list occurrences: query: %w", err)
	}
	defer rows.Close()

	occs := make([]domain.DeliveryOccurrence, 0, 32)
	for rows.Next() {
		var (
			occ              domain.DeliveryOccurrence
			date             time.Time
			status           string
			winStart, winEnd sql.NullString
		)
		if err := rows.Scan(
			&occ.OccurrenceID, &occ.SubscriptionID, &date, &status,
			&occ.ZoneID, &winStart, &winEnd, &occ.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list occurrences: scan row: %w", err)
		}

		occ.Date = domain.DateOf(date)
		occ.Status = domain.OccurrenceStatus(status)
		occ.Window = windowFrom(winStart, winEnd)

		occs = append(occs, occ)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list occurrences: row iteration: %w", err)
	}

	return occs, nil
}

func (s *SQLOccurrenceRepository) Cancel(ctx context.Context, subscriptionID int, date time.Time) (err error) {
	defer obs.Time(ctx, "occurrences.Cancel")(&err)

	if s.DB == nil {
		return errors.New("sql occurrence repository: DB is nil")
	}

	query := `
	UPDATE delivery_occurrences
	SET status = 'cancelled'
	WHERE subscription_id = $1 AND delivery_date = $2;
	`
	res, err := s.DB.ExecContext(ctx, query, subscriptionID, domain.DateOf(date))
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
