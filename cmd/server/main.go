package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"

	"delivery-schedule-service/internal/adapters/dispatch"
	"delivery-schedule-service/internal/adapters/lock"
	"delivery-schedule-service/internal/adapters/repositories"
	"delivery-schedule-service/internal/api"
	"delivery-schedule-service/internal/config"
	"delivery-schedule-service/internal/ports"
	"delivery-schedule-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Redis, downstream order HTTP)
// behind ports, starts the periodic scheduling trigger and the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/schedule.json")
	port := config.Get("PORT", "8080")
	cronSpec := config.Get("SCHEDULE_CRON", "0 2 * * *")

	horizonDays, err := strconv.Atoi(config.Get("HORIZON_DAYS", "14"))
	if err != nil || horizonDays < 1 {
		log.Fatal("HORIZON_DAYS must be a positive integer")
	}

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}

	locker, err := newLocker()
	if err != nil {
		log.Fatal(err)
	}

	dispatcher, err := newDispatcher()
	if err != nil {
		log.Fatal(err)
	}

	occurrences := repositories.NewSqliteOccurrenceRepository(db)
	zones := repositories.NewSqliteZoneRepository(db)
	overrides := repositories.NewSqliteOverrideRepository(db)

	materializer := &services.Materializer{
		Zones:         zones,
		Overrides:     overrides,
		Addresses:     repositories.NewSqliteAddressRepository(db),
		Subscriptions: repositories.NewSqliteSubscriptionRepository(db),
		Occurrences:   occurrences,
		Locker:        locker,
		Dispatcher:    dispatcher,
		LockWait:      5 * time.Second,
	}

	// Periodic trigger: extend every schedulable subscription's horizon
	// once a day. On-demand triggers go through /schedules/extend.
	c := cron.New()
	if _, err := c.AddFunc(cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		horizon := time.Now().UTC().AddDate(0, 0, horizonDays)
		reports, err := materializer.ExtendAll(ctx, horizon)
		if err != nil {
			log.Printf("scheduled run failed: err=%v", err)
			return
		}

		created := 0
		for _, r := range reports {
			created += r.Created
		}
		log.Printf("scheduled run done: subscriptions=%d created=%d", len(reports), created)
	}); err != nil {
		log.Fatalf("invalid SCHEDULE_CRON %q: %v", cronSpec, err)
	}
	c.Start()
	defer c.Stop()

	router := api.NewRouter(materializer, zones, overrides, occurrences, horizonDays)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// newLocker prefers the Redis locker when REDIS_ADDR is set so
// exclusivity holds across processes; local single-node runs fall back
// to the in-process locker.
func newLocker() (ports.SubscriptionLocker, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		log.Println("REDIS_ADDR not set, using in-process subscription locks")
		return lock.NewMemoryLocker(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("new locker: redis ping: %w", err)
	}

	return lock.NewRedisLocker(client, 2*time.Minute), nil
}

// newDispatcher hands occurrences to the order service when ORDERS_URL
// is set; otherwise dispatches into a local mock so the engine stays
// runnable standalone.
func newDispatcher() (ports.OrderDispatcher, error) {
	url := strings.TrimSpace(os.Getenv("ORDERS_URL"))
	if url == "" {
		log.Println("ORDERS_URL not set, order hand-off is mocked")
		return dispatch.NewMockOrderDispatcher(), nil
	}

	return dispatch.NewHTTPOrderDispatcher(url)
}
