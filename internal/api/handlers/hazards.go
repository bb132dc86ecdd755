package handlers

import (
	"ghostmap-route-service/internal/api/dto"
	"ghostmap-route-service/internal/services"
	"net/http"
)

// HazardHandler exposes the loaded hazard layer for map display.
type HazardHandler struct {
	Hazards *services.HazardStore
}

func (h *HazardHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.Hazards == nil {
		writeError(w, r, http.StatusServiceUnavailable, "hazard data unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.HazardCollection(h.Hazards.Hazards()))
}
