package services

import (
	"ghostmap-route-service/internal/domain"

	"github.com/paulmach/orb/geo"
)

// A detour expressed as degree deltas from the start/end midpoint.
type WaypointOffset struct {
	DLon float64
	DLat float64
}

// Wide net: short and medium detours in every direction.
var pass1Offsets = []WaypointOffset{
	{0, 0.005}, {0, -0.005},
	{0.015, 0}, {-0.015, 0},
	{0, 0.030}, {0, -0.030},
	{0.010, 0.010}, {-0.010, -0.010},
}

// Rescue: large detours, roughly 4-5 km, along the four axes.
const rescueOffsetDegrees = 0.045

var pass2Offsets = []WaypointOffset{
	{0, rescueOffsetDegrees}, {0, -rescueOffsetDegrees},
	{rescueOffsetDegrees, 0}, {-rescueOffsetDegrees, 0},
}

// Midpoint returns the great-circle midpoint of start and end.
func Midpoint(start, end domain.Coordinates) domain.Coordinates {
	return domain.FromPoint(geo.Midpoint(start.Point(), end.Point()))
}

func Pass1Waypoints(start, end domain.Coordinates) []domain.Coordinates {
	return applyOffsets(Midpoint(start, end), pass1Offsets)
}

func Pass2Waypoints(start, end domain.Coordinates) []domain.Coordinates {
	return applyOffsets(Midpoint(start, end), pass2Offsets)
}

func applyOffsets(mid domain.Coordinates, offsets []WaypointOffset) []domain.Coordinates {
	out := make([]domain.Coordinates, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, mid.Offset(o.DLon, o.DLat))
	}
	return out
}
