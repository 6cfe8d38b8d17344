package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"delivery-schedule-service/internal/api/dto"
	"delivery-schedule-service/internal/domain"
	"delivery-schedule-service/internal/ports"
	"delivery-schedule-service/internal/services"
)

type ZoneHandler struct {
	Zones     ports.ZoneRepository
	Overrides ports.OverrideRepository
}

// Resolve previews delivery coverage for an address: which zone would
// govern it, or that it is unserviceable. Used by storefront and admin
// before a subscription exists, so the address fields arrive inline
// rather than by id.
func (h *ZoneHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ResolveZoneRequest

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

	addr := domain.Address{
		AddressID:  req.AddressID,
		UserID:     req.UserID,
		PostalCode: strings.TrimSpace(req.PostalCode),
	}
	if req.Lon != nil && req.Lat != nil {
		addr.Coord = &domain.Coordinates{Lon: *req.Lon, Lat: *req.Lat}
	}
	if addr.PostalCode == "" && addr.Coord == nil {
		writeError(w, r, http.StatusBadRequest, "postal_code or lon/lat is required")
		return
	}

	ctx := r.Context()

	zones, err := h.Zones.ListActiveZones(ctx)
	if err != nil {
		log.Printf("resolve zone failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	var addressOv, userOv []domain.ZoneOverride
	if req.AddressID > 0 {
		if addressOv, err = h.Overrides.ListForAddress(ctx, req.AddressID); err != nil {
			log.Printf("resolve zone failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
	}
	if req.UserID > 0 {
		if userOv, err = h.Overrides.ListForUser(ctx, req.UserID); err != nil {
			log.Printf("resolve zone failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	zone, err := services.ResolveZone(addr, zones, addressOv, userOv, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrUnserviceable) {
			writeJSON(w, r, http.StatusOK, dto.ResolveZoneResponse{Serviceable: false})
			return
		}
		log.Printf("resolve zone failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ResolveZoneResponse{
		Serviceable: true,
		Zone: &dto.ZoneResponse{
			ZoneID: zone.ZoneID,
			Name:   zone.Name,
		},
	}
	if zone.Window != nil {
		res.Zone.WindowStart = &zone.Window.Start
		res.Zone.WindowEnd = &zone.Window.End
	}

	writeJSON(w, r, http.StatusOK, res)
}
