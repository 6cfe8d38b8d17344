package api

import (
	"net/http"

	"delivery-schedule-service/internal/api/handlers"
	"delivery-schedule-service/internal/ports"
	"delivery-schedule-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	materializer *services.Materializer,
	zones ports.ZoneRepository,
	overrides ports.OverrideRepository,
	occurrences ports.OccurrenceRepository,
	defaultHorizonDays int,
) http.Handler {
	mux := http.NewServeMux()

	zoneHandler := &handlers.ZoneHandler{Zones: zones, Overrides: overrides}
	scheduleHandler := &handlers.ScheduleHandler{
		Materializer:       materializer,
		DefaultHorizonDays: defaultHorizonDays,
	}
	occurrenceHandler := &handlers.OccurrenceHandler{Occurrences: occurrences}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/zones/resolve", zoneHandler.Resolve)
	mux.HandleFunc("/schedules/extend", scheduleHandler.Extend)
	mux.HandleFunc("/schedules/run", scheduleHandler.Run)
	mux.HandleFunc("/occurrences", occurrenceHandler.List)

	return loggingMiddleware(mux)
}
