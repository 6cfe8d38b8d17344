package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"delivery-schedule-service/internal/api/dto"
	"delivery-schedule-service/internal/ports"
)

type OccurrenceHandler struct {
	Occurrences ports.OccurrenceRepository
}

// List returns materialized occurrences for one subscription inside an
// inclusive date window. Admin preview surface; the engine itself never
// reads through this path.
func (h *OccurrenceHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	subscriptionID, err := strconv.Atoi(q.Get("subscription_id"))
	if err != nil || subscriptionID <= 0 {
		writeError(w, r, http.StatusBadRequest, "subscription_id is required")
		return
	}

	from, err := time.ParseInLocation("2006-01-02", q.Get("from"), time.UTC)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := time.ParseInLocation("2006-01-02", q.Get("to"), time.UTC)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}

	occs, err := h.Occurrences.List(r.Context(), subscriptionID, from, to)
	if err != nil {
		log.Printf("list occurrences failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListOccurrencesResponse{Occurrences: make([]dto.OccurrenceResponse, 0, len(occs))}
	for _, occ := range occs {
		item := dto.OccurrenceResponse{
			OccurrenceID:   occ.OccurrenceID,
			SubscriptionID: occ.SubscriptionID,
			Date:           occ.Date.Format("2006-01-02"),
			Status:         string(occ.Status),
			ZoneID:         occ.ZoneID,
			CreatedAt:      occ.CreatedAt,
		}
		if occ.Window != nil {
			item.WindowStart = &occ.Window.Start
			item.WindowEnd = &occ.Window.End
		}
		res.Occurrences = append(res.Occurrences, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}
