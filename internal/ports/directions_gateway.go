package ports

import (
	"context"
	"ghostmap-route-service/internal/domain"
)

// Contract for retrieving a walking route from an external directions provider.
type DirectionsGateway interface {
	// Return the route start -> end, passing through waypoint when it is non-nil.
	GetRoute(ctx context.Context, start, end domain.Coordinates, waypoint *domain.Coordinates) (domain.Route, error)
}
