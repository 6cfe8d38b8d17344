package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-schedule-service/internal/domain"
)

// SQLite-backed implementation of the ZoneRepository port.
type SqliteZoneRepository struct{ DB *sql.DB }

func NewSqliteZoneRepository(db *sql.DB) *SqliteZoneRepository {
	return &SqliteZoneRepository{DB: db}
}

// Return all active zones as value objects with normalized postal-code
// sets and parsed boundary rings.
func (s *SqliteZoneRepository) ListActiveZones(ctx context.Context) ([]domain.Zone, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite zone repository: DB is nil")
	}

	query := `
	SELECT
		zone_id, name, postal_codes, boundary, active_days,
		window_start, window_end, effective_from, effective_to
	FROM zones
	WHERE active = 1
	ORDER BY zone_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list zones: query zones table: %w", err)
	}
	defer rows.Close()

	zones := make([]domain.Zone, 0, 16)
	for rows.Next() {
		var (
			z                          domain.Zone
			postalCodes, activeDays    string
			boundary, winStart, winEnd sql.NullString
			effectiveFrom, effectiveTo sql.NullString
		)
		if err := rows.Scan(
			&z.ZoneID, &z.Name, &postalCodes, &boundary, &activeDays,
			&winStart, &winEnd, &effectiveFrom, &effectiveTo,
		); err != nil {
			return nil, fmt.Errorf("list zones: scan row: %w", err)
		}

		z.Active = true
		z.PostalCodes = parsePostalCodes(postalCodes)

		if z.Boundary, err = parsePolygon(boundary); err != nil {
			return nil, fmt.Errorf("list zones: zone %d: %w", z.ZoneID, err)
		}
		if z.ActiveDays, err = parseWeekdays(activeDays); err != nil {
			return nil, fmt.Errorf("list zones: zone %d: %w", z.ZoneID, err)
		}
		z.Window = windowFrom(winStart, winEnd)

		if z.EffectiveFrom, err = parseDatePtr(effectiveFrom); err != nil {
			return nil, fmt.Errorf("list zones: zone %d: %w", z.ZoneID, err)
		}
		if z.EffectiveTo, err = parseDatePtr(effectiveTo); err != nil {
			return nil, fmt.Errorf("list zones: zone %d: %w", z.ZoneID, err)
		}

		zones = append(zones, z)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list zones: row iteration: %w", err)
	}

	return zones, nil
}
