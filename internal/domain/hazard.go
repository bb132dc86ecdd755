package domain

import "github.com/paulmach/orb"

// A fixed point the route should avoid, e.g. a surveillance camera.
// Hazards are immutable once loaded.
type Hazard struct {
	ID       string
	Location Coordinates
	Type     string
	Operator string
}

// Point lets hazards be stored in an orb quadtree.
func (h *Hazard) Point() orb.Point { return h.Location.Point() }
