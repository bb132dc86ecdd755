package services

import (
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/ports"
)

// Fixed proximity buffer around a route path.
const HazardBufferMeters = 50.0

// ScoreRoute turns a provider route into a Candidate.
// A nil hazard index yields HazardCountUnknown, never zero.
func ScoreRoute(route domain.Route, hazards ports.HazardIndex, pass domain.Pass, waypoint *domain.Coordinates) domain.Candidate {
	count := domain.HazardCountUnknown
	if hazards != nil {
		count = domain.HazardCount(hazards.CountWithin(route, HazardBufferMeters))
	}

	return domain.Candidate{
		Route:    route,
		Hazards:  count,
		Pass:     pass,
		Waypoint: waypoint,
	}
}
