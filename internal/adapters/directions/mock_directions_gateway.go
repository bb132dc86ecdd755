package directions

import (
	"context"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/ports"
	"sync"
)

var _ ports.DirectionsGateway = (*MockDirectionsGateway)(nil)

// MockRoute is a canned gateway response. A nil Waypoint is the direct route.
type MockRoute struct {
	Waypoint *domain.Coordinates
	Route    domain.Route
	Err      error
}

// MockDirectionsGateway answers from a fixed table keyed by waypoint and
// records every call. Unknown waypoints fail, like an unreachable provider.
type MockDirectionsGateway struct {
	mu    sync.Mutex
	m     map[string]MockRoute
	calls []string
}

func NewMockDirectionsGateway(routes []MockRoute) *MockDirectionsGateway {
	m := make(map[string]MockRoute, len(routes))
	for _, r := range routes {
		m[WaypointKey(r.Waypoint)] = r
	}
	return &MockDirectionsGateway{m: m}
}

// WaypointKey identifies a request by its waypoint at micro-degree precision.
func WaypointKey(wp *domain.Coordinates) string {
	if wp == nil {
		return "direct"
	}
	return fmt.Sprintf("%.6f,%.6f", wp.Lon, wp.Lat)
}

func (g *MockDirectionsGateway) GetRoute(
	ctx context.Context,
	start, end domain.Coordinates,
	waypoint *domain.Coordinates,
) (domain.Route, error) {
	key := WaypointKey(waypoint)

	g.mu.Lock()
	g.calls = append(g.calls, key)
	r, ok := g.m[key]
	g.mu.Unlock()

	if !ok {
		return domain.Route{}, fmt.Errorf("no mock route for waypoint %s", key)
	}
	if r.Err != nil {
		return domain.Route{}, r.Err
	}

	return r.Route, nil
}

func (g *MockDirectionsGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *MockDirectionsGateway) Called(waypoint *domain.Coordinates) bool {
	key := WaypointKey(waypoint)

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.calls {
		if c == key {
			return true
		}
	}
	return false
}
