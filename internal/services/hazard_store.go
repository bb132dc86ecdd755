package services

import (
	"context"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/platform/obs"
	"ghostmap-route-service/internal/ports"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
)

var _ ports.HazardIndex = (*HazardStore)(nil)

// HazardStore is an immutable, in-memory snapshot of hazard points.
//
// Hazards are indexed in a quadtree so that a route only measures distance
// to the points inside its padded bounding box. The store is never mutated
// after construction and is safe for concurrent use without locking.
type HazardStore struct {
	hazards []domain.Hazard
	index   *quadtree.Quadtree
}

func NewHazardStore(hazards []domain.Hazard) (*HazardStore, error) {
	owned := make([]domain.Hazard, len(hazards))
	copy(owned, hazards)

	index := quadtree.New(orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}})
	for i := range owned {
		if err := owned[i].Location.Validate(); err != nil {
			return nil, fmt.Errorf("new hazard store: hazard %q: %w", owned[i].ID, err)
		}
		if err := index.Add(&owned[i]); err != nil {
			return nil, fmt.Errorf("new hazard store: index hazard %q: %w", owned[i].ID, err)
		}
	}

	return &HazardStore{hazards: owned, index: index}, nil
}

// LoadHazardStore pulls the hazard set from source once and builds the snapshot.
func LoadHazardStore(ctx context.Context, source ports.HazardSource) (_ *HazardStore, err error) {
	defer obs.Time(ctx, "hazards.Load")(&err)

	hazards, err := source.LoadHazards(ctx)
	if err != nil {
		return nil, fmt.Errorf("load hazard store: %w", err)
	}

	return NewHazardStore(hazards)
}

func (s *HazardStore) Len() int { return len(s.hazards) }

// Hazards returns a copy of the snapshot.
func (s *HazardStore) Hazards() []domain.Hazard {
	out := make([]domain.Hazard, len(s.hazards))
	copy(out, s.hazards)
	return out
}

// CountWithin counts hazards lying inside the route path buffered by
// bufferMeters. A point is inside the buffer when its distance to the
// polyline is at most bufferMeters, which matches a buffer polygon with
// round caps and joins.
func (s *HazardStore) CountWithin(route domain.Route, bufferMeters float64) int {
	if len(route.Path) == 0 || len(s.hazards) == 0 {
		return 0
	}

	line := route.LineString()
	bound := line.Bound()

	nearby := s.index.InBound(nil, geo.BoundPad(bound, bufferMeters))
	if len(nearby) == 0 {
		return 0
	}

	// Distances are measured on a local equirectangular plane centered on
	// the route, which is accurate to well under a meter at walking scale.
	refLat := bound.Center().Lat()
	path := make(orb.LineString, 0, len(line))
	for _, p := range line {
		path = append(path, toLocalMeters(p, refLat))
	}

	count := 0
	for _, h := range nearby {
		p := toLocalMeters(h.Point(), refLat)

		var d float64
		if len(path) == 1 {
			d = planar.Distance(path[0], p)
		} else {
			d = planar.DistanceFrom(path, p)
		}

		if d <= bufferMeters {
			count++
		}
	}

	return count
}

const metersPerDegree = orb.EarthRadius * math.Pi / 180

func toLocalMeters(p orb.Point, refLat float64) orb.Point {
	return orb.Point{
		p.Lon() * metersPerDegree * math.Cos(refLat*math.Pi/180),
		p.Lat() * metersPerDegree,
	}
}
