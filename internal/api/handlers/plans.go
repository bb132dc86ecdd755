package handlers

import (
	"encoding/json"
	"errors"
	"ghostmap-route-service/internal/api/dto"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/platform/obs"
	"ghostmap-route-service/internal/ports"
	"ghostmap-route-service/internal/services"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

type PlanHandler struct {
	Gateway ports.DirectionsGateway
	// Hazards is nil when the hazard set failed to load.
	Hazards *services.HazardStore
	// Publisher is optional.
	Publisher   ports.PlanPublisher
	FanoutLimit int

	validate *validator.Validate
}

func NewPlanHandler(
	gateway ports.DirectionsGateway,
	hazards *services.HazardStore,
	publisher ports.PlanPublisher,
	fanoutLimit int,
) *PlanHandler {
	return &PlanHandler{
		Gateway:     gateway,
		Hazards:     hazards,
		Publisher:   publisher,
		FanoutLimit: fanoutLimit,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Plan returns the standard walking route between start and end, plus a
// safer alternative when one with fewer hazards was found.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest

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

	if h.validate == nil {
		h.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "start and end need lon in [-180,180] and lat in [-90,90]")
		return
	}

	var index ports.HazardIndex
	if h.Hazards != nil {
		index = h.Hazards
	}

	svcReq := services.SelectRouteRequest{
		Start:        toCoordinates(req.Start),
		End:          toCoordinates(req.End),
		HazardsReady: h.Hazards != nil,
		FanoutLimit:  h.FanoutLimit,
	}

	result, err := services.SelectRoute(r.Context(), svcReq, h.Gateway, index)
	switch {
	case errors.Is(err, services.ErrMissingEndpoint):
		writeError(w, r, http.StatusBadRequest, "start and end are required")
		return
	case errors.Is(err, services.ErrNoBaseRoute):
		log.Printf("req_id=%s select route failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusBadGateway, "no route available")
		return
	case err != nil:
		log.Printf("req_id=%s select route failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	planID := uuid.NewString()

	if h.Publisher != nil {
		if err := h.Publisher.PublishPlan(r.Context(), planID, result); err != nil {
			log.Printf("req_id=%s plan_id=%s publish plan failed: %v", obs.RequestID(r.Context()), planID, err)
		}
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(planID, result))
}

func toCoordinates(p *dto.PointRequest) *domain.Coordinates {
	if p == nil {
		return nil
	}
	return &domain.Coordinates{Lon: *p.Lon, Lat: *p.Lat}
}

func toPlanResponse(planID string, result *domain.SelectionResult) dto.PlanResponse {
	res := dto.PlanResponse{
		PlanID:     planID,
		Stage:      string(result.Stage),
		HazardData: "unavailable",
		Standard:   toRouteResponse(result.Standard),
	}
	if result.HazardDataAvailable {
		res.HazardData = "available"
	}
	if result.Safe != nil {
		safe := toRouteResponse(*result.Safe)
		res.Safe = &safe
	}
	return res
}

func toRouteResponse(c domain.Candidate) dto.RouteResponse {
	rr := dto.RouteResponse{
		Pass:            c.Pass.String(),
		Geometry:        geojson.NewGeometry(c.Route.LineString()),
		DurationMinutes: c.DurationMinutes(),
		DistanceKm:      c.DistanceKm(),
		HazardLabel:     "?",
	}
	if c.Hazards.Known() {
		n := int(c.Hazards)
		rr.HazardCount = &n
		rr.HazardLabel = strconv.Itoa(n)
	}
	if c.Waypoint != nil {
		rr.Waypoint = c.Waypoint.CoordsToList()
	}
	return rr
}
