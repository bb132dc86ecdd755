package api

import (
	"ghostmap-route-service/internal/api/handlers"
	"ghostmap-route-service/internal/ports"
	"ghostmap-route-service/internal/services"
	"net/http"
)

type RouterDeps struct {
	Gateway ports.DirectionsGateway
	// Hazards is nil when the hazard set failed to load.
	Hazards     *services.HazardStore
	Publisher   ports.PlanPublisher
	FanoutLimit int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers only see ports, never concrete adapters.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	planHandler := handlers.NewPlanHandler(deps.Gateway, deps.Hazards, deps.Publisher, deps.FanoutLimit)
	hazardHandler := &handlers.HazardHandler{Hazards: deps.Hazards}

	mux.HandleFunc("/health", handlers.Health(deps.Hazards))
	mux.HandleFunc("/hazards", hazardHandler.List)
	mux.HandleFunc("/routes/plan", planHandler.Plan)

	return requestIDMiddleware(loggingMiddleware(mux))
}
