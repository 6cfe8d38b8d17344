package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"delivery-schedule-service/internal/domain"
)

// SQLite-backed implementation of the OverrideRepository port.
// Rows are returned in any state; in-force filtering is domain logic.
type SqliteOverrideRepository struct{ DB *sql.DB }

func NewSqliteOverrideRepository(db *sql.DB) *SqliteOverrideRepository {
	return &SqliteOverrideRepository{DB: db}
}

func (s *SqliteOverrideRepository) ListForAddress(ctx context.Context, addressID int) ([]domain.ZoneOverride, error) {
	return s.list(ctx, `address_id`, addressID)
}

func (s *SqliteOverrideRepository) ListForUser(ctx context.Context, userID int) ([]domain.ZoneOverride, error) {
	return s.list(ctx, `user_id`, userID)
}

// column is one of the two fixed scope columns, never caller input.
func (s *SqliteOverrideRepository) list(ctx context.Context, column string, id int) ([]domain.ZoneOverride, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite override repository: DB is nil")
	}

	query := fmt.Sprintf(`
	SELECT override_id, user_id, address_id, zone_id, reason, expires_at, active, created_at
	FROM zone_overrides
	WHERE %s = ?
	ORDER BY created_at DESC, override_id DESC;
	`, column)

	rows, err := s.DB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list overrides: query zone_overrides table: %w", err)
	}
	defer rows.Close()

	overrides := make([]domain.ZoneOverride, 0, 4)
	for rows.Next() {
		var (
			o                  domain.ZoneOverride
			userID, addressID  sql.NullInt64
			expiresAt, created sql.NullString
		)
		if err := rows.Scan(
			&o.OverrideID, &userID, &addressID, &o.ZoneID,
			&o.Reason, &expiresAt, &o.Active, &created,
		); err != nil {
			return nil, fmt.Errorf("list overrides: scan row: %w", err)
		}

		if userID.Valid {
			v := int(userID.Int64)
			o.UserID = &v
		}
		if addressID.Valid {
			v := int(addressID.Int64)
			o.AddressID = &v
		}
		if o.ExpiresAt, err = parseTimestampPtr(expiresAt); err != nil {
			return nil, fmt.Errorf("list overrides: override %d: %w", o.OverrideID, err)
		}
		if created.Valid {
			t, err := time.Parse(time.RFC3339, created.String)
			if err != nil {
				return nil, fmt.Errorf("list overrides: override %d: parse created_at: %w", o.OverrideID, err)
			}
			o.CreatedAt = t
		}

		overrides = append(overrides, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list overrides: row iteration: %w", err)
	}

	return overrides, nil
}
