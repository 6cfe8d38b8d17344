package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createZonesQuery := `
	CREATE TABLE IF NOT EXISTS zones (
		zone_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		postal_codes TEXT NOT NULL DEFAULT '',
		boundary TEXT,
		active_days TEXT NOT NULL DEFAULT '',
		window_start TEXT,
		window_end TEXT,
		active INTEGER NOT NULL DEFAULT 1,
		effective_from TEXT,
		effective_to TEXT
	);
	`

	createOverridesQuery := `
	CREATE TABLE IF NOT EXISTS zone_overrides (
		override_id INTEGER PRIMARY KEY,
		user_id INTEGER,
		address_id INTEGER,
		zone_id INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		expires_at TEXT,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		CHECK ((user_id IS NULL) != (address_id IS NULL))
	);
	`

	createAddressesQuery := `
	CREATE TABLE IF NOT EXISTS addresses (
		address_id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		postal_code TEXT NOT NULL DEFAULT '',
		lines TEXT NOT NULL DEFAULT '',
		lon REAL,
		lat REAL
	);
	`

	createPlansQuery := `
	CREATE TABLE IF NOT EXISTS plans (
		plan_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		frequency TEXT NOT NULL,
		interval_days INTEGER NOT NULL DEFAULT 0,
		weekdays TEXT NOT NULL DEFAULT '',
		min_deliveries INTEGER NOT NULL DEFAULT 0
	);
	`

	createSubscriptionsQuery := `
	CREATE TABLE IF NOT EXISTS subscriptions (
		subscription_id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		address_id INTEGER NOT NULL,
		plan_id INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		cancelled_at TEXT
	);
	`

	createPausesQuery := `
	CREATE TABLE IF NOT EXISTS subscription_pauses (
		pause_id INTEGER PRIMARY KEY AUTOINCREMENT,
		subscription_id INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT
	);
	`

	// UNIQUE(subscription_id, delivery_date) is the storage-level
	// safety net behind the per-subscription lock.
	createOccurrencesQuery := `
	CREATE TABLE IF NOT EXISTS delivery_occurrences (
		occurrence_id INTEGER PRIMARY KEY AUTOINCREMENT,
		subscription_id INTEGER NOT NULL,
		delivery_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'scheduled',
		zone_id INTEGER NOT NULL,
		window_start TEXT,
		window_end TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (subscription_id, delivery_date)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_pauses_subscription
	ON subscription_pauses(subscription_id);
	`

	statements := []string{
		createZonesQuery,
		createOverridesQuery,
		createAddressesQuery,
		createPlansQuery,
		createSubscriptionsQuery,
		createPausesQuery,
		createOccurrencesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ZoneSeed struct {
	ZoneID        int         `json:"zone_id"`
	Name          string      `json:"name"`
	PostalCodes   []string    `json:"postal_codes"`
	Boundary      [][]float64 `json:"boundary"`
	ActiveDays    []int       `json:"active_days"`
	WindowStart   string      `json:"window_start"`
	WindowEnd     string      `json:"window_end"`
	Active        bool        `json:"active"`
	EffectiveFrom string      `json:"effective_from"`
	EffectiveTo   string      `json:"effective_to"`
}

type PlanSeed struct {
	PlanID        int    `json:"plan_id"`
	Name          string `json:"name"`
	Frequency     string `json:"frequency"`
	IntervalDays  int    `json:"interval_days"`
	Weekdays      []int  `json:"weekdays"`
	MinDeliveries int    `json:"min_deliveries"`
}

type AddressSeed struct {
	AddressID  int      `json:"address_id"`
	UserID     int      `json:"user_id"`
	PostalCode string   `json:"postal_code"`
	Lines      []string `json:"lines"`
	Lon        *float64 `json:"lon"`
	Lat        *float64 `json:"lat"`
}

type PauseSeed struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type SubscriptionSeed struct {
	SubscriptionID int         `json:"subscription_id"`
	UserID         int         `json:"user_id"`
	AddressID      int         `json:"address_id"`
	PlanID         int         `json:"plan_id"`
	StartDate      string      `json:"start_date"`
	Status         string      `json:"status"`
	CancelledAt    string      `json:"cancelled_at"`
	Pauses         []PauseSeed `json:"pauses"`
}

type OverrideSeed struct {
	OverrideID int    `json:"override_id"`
	UserID     *int   `json:"user_id"`
	AddressID  *int   `json:"address_id"`
	ZoneID     int    `json:"zone_id"`
	Reason     string `json:"reason"`
	ExpiresAt  string `json:"expires_at"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at"`
}

type Seed struct {
	Zones         []ZoneSeed         `json:"zones"`
	Plans         []PlanSeed         `json:"plans"`
	Addresses     []AddressSeed      `json:"addresses"`
	Subscriptions []SubscriptionSeed `json:"subscriptions"`
	Overrides     []OverrideSeed     `json:"overrides"`
}

// Populate the database with reference and subscription data from a
// JSON file. Intended for local runs; production reference data is
// owned by the administrative layer.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed schedule data: read %q: %w", jsonPath, err)
	}

	var seed Seed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return fmt.Errorf("seed schedule data: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed schedule data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := seedZones(tx, seed.Zones); err != nil {
		return fmt.Errorf("seed schedule data: %w", err)
	}
	if err := seedPlans(tx, seed.Plans); err != nil {
		return fmt.Errorf("seed schedule data: %w", err)
	}
	if err := seedAddresses(tx, seed.Addresses); err != nil {
		return fmt.Errorf("seed schedule data: %w", err)
	}
	if err := seedSubscriptions(tx, seed.Subscriptions); err != nil {
		return fmt.Errorf("seed schedule data: %w", err)
	}
	if err := seedOverrides(tx, seed.Overrides); err != nil {
		return fmt.Errorf("seed schedule data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed schedule data: commit tx: %w", err)
	}

	return nil
}

func seedZones(tx *sql.Tx, zones []ZoneSeed) error {
	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO zones (
		zone_id, name, postal_codes, boundary, active_days,
		window_start, window_end, active, effective_from, effective_to
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare zone insert: %w", err)
	}
	defer stmt.Close()

	for _, z := range zones {
		if z.ZoneID <= 0 || strings.TrimSpace(z.Name) == "" {
			return fmt.Errorf("zone seed %d: id and name are required", z.ZoneID)
		}

		boundary, err := encodePolygon(z.Boundary)
		if err != nil {
			return fmt.Errorf("zone seed %d: %w", z.ZoneID, err)
		}

		if _, err := stmt.Exec(
			z.ZoneID, z.Name, joinPostalCodes(z.PostalCodes), nullable(boundary),
			joinWeekdays(z.ActiveDays), nullable(z.WindowStart), nullable(z.WindowEnd),
			z.Active, nullable(z.EffectiveFrom), nullable(z.EffectiveTo),
		); err != nil {
			return fmt.Errorf("insert zone_id=%d: %w", z.ZoneID, err)
		}
	}

	return nil
}

func seedPlans(tx *sql.Tx, plans []PlanSeed) error {
	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO plans (
		plan_id, name, frequency, interval_days, weekdays, min_deliveries
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare plan insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range plans {
		if p.PlanID <= 0 || strings.TrimSpace(p.Frequency) == "" {
			return fmt.Errorf("plan seed %d: id and frequency are required", p.PlanID)
		}

		if _, err := stmt.Exec(
			p.PlanID, p.Name, p.Frequency, p.IntervalDays,
			joinWeekdays(p.Weekdays), p.MinDeliveries,
		); err != nil {
			return fmt.Errorf("insert plan_id=%d: %w", p.PlanID, err)
		}
	}

	return nil
}

func seedAddresses(tx *sql.Tx, addresses []AddressSeed) error {
	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO addresses (
		address_id, user_id, postal_code, lines, lon, lat
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare address insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range addresses {
		if a.AddressID <= 0 {
			return fmt.Errorf("address seed: invalid address_id %d", a.AddressID)
		}

		if _, err := stmt.Exec(
			a.AddressID, a.UserID, strings.TrimSpace(a.PostalCode),
			strings.Join(a.Lines, "\n"), a.Lon, a.Lat,
		); err != nil {
			return fmt.Errorf("insert address_id=%d: %w", a.AddressID, err)
		}
	}

	return nil
}

func seedSubscriptions(tx *sql.Tx, subs []SubscriptionSeed) error {
	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO subscriptions (
		subscription_id, user_id, address_id, plan_id, start_date, status, cancelled_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare subscription insert: %w", err)
	}
	defer stmt.Close()

	pauseStmt, err := tx.Prepare(`
	INSERT INTO subscription_pauses (subscription_id, start_date, end_date)
	VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare pause insert: %w", err)
	}
	defer pauseStmt.Close()

	for _, s := range subs {
		if s.SubscriptionID <= 0 || s.PlanID <= 0 || s.AddressID <= 0 {
			return fmt.Errorf("subscription seed %d: ids are required", s.SubscriptionID)
		}

		status := s.Status
		if status == "" {
			status = "active"
		}

		if _, err := stmt.Exec(
			s.SubscriptionID, s.UserID, s.AddressID, s.PlanID,
			s.StartDate, status, nullable(s.CancelledAt),
		); err != nil {
			return fmt.Errorf("insert subscription_id=%d: %w", s.SubscriptionID, err)
		}

		// Reseeding replaces the pause list rather than appending to it.
		if _, err := tx.Exec(
			`DELETE FROM subscription_pauses WHERE subscription_id = ?;`, s.SubscriptionID,
		); err != nil {
			return fmt.Errorf("clear pauses subscription_id=%d: %w", s.SubscriptionID, err)
		}
		for _, p := range s.Pauses {
			if _, err := pauseStmt.Exec(s.SubscriptionID, p.StartDate, nullable(p.EndDate)); err != nil {
				return fmt.Errorf("insert pause subscription_id=%d: %w", s.SubscriptionID, err)
			}
		}
	}

	return nil
}

func seedOverrides(tx *sql.Tx, overrides []OverrideSeed) error {
	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO zone_overrides (
		override_id, user_id, address_id, zone_id, reason, expires_at, active, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare override insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range overrides {
		if o.OverrideID <= 0 || o.ZoneID <= 0 {
			return fmt.Errorf("override seed %d: ids are required", o.OverrideID)
		}
		if (o.UserID == nil) == (o.AddressID == nil) {
			return fmt.Errorf("override seed %d: exactly one of user_id/address_id must be set", o.OverrideID)
		}

		if _, err := stmt.Exec(
			o.OverrideID, o.UserID, o.AddressID, o.ZoneID, o.Reason,
			nullable(o.ExpiresAt), o.Active, o.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert override_id=%d: %w", o.OverrideID, err)
		}
	}

	return nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
