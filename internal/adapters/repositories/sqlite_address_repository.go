package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"delivery-schedule-service/internal/domain"
	"delivery-schedule-service/internal/ports"
)

// SQLite-backed implementation of the AddressRepository port.
type SqliteAddressRepository struct{ DB *sql.DB }

func NewSqliteAddressRepository(db *sql.DB) *SqliteAddressRepository {
	return &SqliteAddressRepository{DB: db}
}

func (s *SqliteAddressRepository) GetAddress(ctx context.Context, addressID int) (domain.Address, error) {
	if s.DB == nil {
		return domain.Address{}, errors.New("sqlite address repository: DB is nil")
	}

	query := `
	SELECT address_id, user_id, postal_code, lines, lon, lat
	FROM addresses
	WHERE address_id = ?;
	`

	var (
		addr     domain.Address
		lines    string
		lon, lat sql.NullFloat64
	)
	err := s.DB.QueryRowContext(ctx, query, addressID).Scan(
		&addr.AddressID, &addr.UserID, &addr.PostalCode, &lines, &lon, &lat,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Address{}, fmt.Errorf("get address %d: %w", addressID, ports.ErrNotFound)
	}
	if err != nil {
		return domain.Address{}, fmt.Errorf("get address %d: %w", addressID, err)
	}

	if lines != "" {
		addr.Lines = strings.Split(lines, "\n")
	}
	if lon.Valid && lat.Valid {
		addr.Coord = &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}
	}

	return addr, nil
}
