package handlers

import (
	"ghostmap-route-service/internal/services"
	"net/http"
)

// Health reports liveness and whether hazard data was loaded. The service
// stays up without hazards, so an unavailable hazard set is not a failure.
func Health(hazards *services.HazardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		res := map[string]any{"status": "ok", "hazard_data": "unavailable"}
		if hazards != nil {
			res["hazard_data"] = "available"
			res["hazards"] = hazards.Len()
		}
		writeJSON(w, r, http.StatusOK, res)
	}
}
