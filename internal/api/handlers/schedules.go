package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"delivery-schedule-service/internal/api/dto"
	"delivery-schedule-service/internal/ports"
	"delivery-schedule-service/internal/services"
)

type ScheduleHandler struct {
	Materializer *services.Materializer

	// DefaultHorizonDays sizes the window for batch runs when the
	// request omits a horizon date.
	DefaultHorizonDays int
}

// Extend materializes missing occurrences for one subscription up to
// the requested horizon. Invoked by admin actions (plan edit, resume)
// and by on-demand triggers.
func (h *ScheduleHandler) Extend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ExtendScheduleRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.SubscriptionID <= 0 {
		writeError(w, r, http.StatusBadRequest, "subscription_id is required")
		return
	}
	horizon, err := time.ParseInLocation("2006-01-02", req.HorizonDate, time.UTC)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "horizon_date must be YYYY-MM-DD")
		return
	}

	report, err := h.Materializer.ExtendSchedule(r.Context(), req.SubscriptionID, horizon)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "internal server error"

		switch {
		case errors.Is(err, ports.ErrNotFound):
			status, msg = http.StatusNotFound, "subscription not found"
		case errors.Is(err, ports.ErrLockContention):
			status, msg = http.StatusConflict, "subscription is being scheduled elsewhere, retry later"
		case errors.Is(err, services.ErrUnserviceable):
			status, msg = http.StatusUnprocessableEntity, "subscription address is unserviceable"
		case errors.Is(err, services.ErrConfiguration):
			status, msg = http.StatusUnprocessableEntity, "subscription plan is misconfigured"
		default:
			log.Printf("extend schedule failed: %v", err)
		}

		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusOK, reportToDTO(report))
}

// Run extends every schedulable subscription, the same operation the
// periodic trigger performs.
func (h *ScheduleHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.RunScheduleRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	horizon := time.Now().UTC().AddDate(0, 0, h.DefaultHorizonDays)
	if req.HorizonDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.HorizonDate, time.UTC)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "horizon_date must be YYYY-MM-DD")
			return
		}
		horizon = parsed
	}

	reports, err := h.Materializer.ExtendAll(r.Context(), horizon)
	if err != nil {
		log.Printf("schedule run failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.RunScheduleResponse{Reports: make([]dto.RunReportResponse, 0, len(reports))}
	for _, report := range reports {
		res.Reports = append(res.Reports, reportToDTO(report))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func reportToDTO(report services.RunReport) dto.RunReportResponse {
	out := dto.RunReportResponse{
		SubscriptionID:  report.SubscriptionID,
		Created:         report.Created,
		SkippedExisting: report.SkippedExisting,
		SkippedPaused:   report.SkippedPaused,
		SkippedCalendar: report.SkippedCalendar,
		Failures:        make([]dto.DateFailureResponse, 0, len(report.Failures)),
		Error:           report.Err,
	}
	for _, f := range report.Failures {
		out.Failures = append(out.Failures, dto.DateFailureResponse{
			Date:  f.Date.Format("2006-01-02"),
			Stage: f.Stage,
			Error: f.Err,
		})
	}
	return out
}
