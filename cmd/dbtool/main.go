package main

import (
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"delivery-schedule-service/internal/adapters/repositories"
	"delivery-schedule-service/internal/platform/db"
)

// dbtool prepares the shared Postgres occurrence store for multi-process
// deployments. Reference data (zones, plans, subscriptions) stays with
// the administrative layer's own migrations.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	log.Println("Initializing occurrence schema...")
	if err := repositories.InitOccurrenceSchema(db); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
