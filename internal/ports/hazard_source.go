package ports

import (
	"context"
	"ghostmap-route-service/internal/domain"
)

// Port: a boundary for loading the hazard set once per session.
type HazardSource interface {
	LoadHazards(ctx context.Context) ([]domain.Hazard, error)
}

// Read-only spatial query over a loaded hazard snapshot.
type HazardIndex interface {
	// Count hazards within bufferMeters of the route path.
	CountWithin(route domain.Route, bufferMeters float64) int
}
