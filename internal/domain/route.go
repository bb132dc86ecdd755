package domain

import (
	"math"

	"github.com/paulmach/orb"
)

// Represents a walking route returned by the directions provider.
// Path is ordered and holds at least two points.
type Route struct {
	Path            []Coordinates
	DurationSeconds float64
	DistanceMeters  float64
}

func (r Route) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(r.Path))
	for _, c := range r.Path {
		ls = append(ls, c.Point())
	}
	return ls
}

// HazardCount is the number of hazards near a route.
// HazardCountUnknown marks a route scored without hazard data.
type HazardCount int

const HazardCountUnknown HazardCount = -1

func (h HazardCount) Known() bool { return h >= 0 }

// Compare orders counts ascending, with unknown after every known count.
func (h HazardCount) Compare(o HazardCount) int {
	switch {
	case h == o:
		return 0
	case !h.Known():
		return 1
	case !o.Known():
		return -1
	case h < o:
		return -1
	default:
		return 1
	}
}

// Which detour search produced a candidate. PassStandard is the direct route.
type Pass int

const (
	PassStandard Pass = iota
	PassWideNet
	PassRescue
)

func (p Pass) String() string {
	switch p {
	case PassWideNet:
		return "pass1"
	case PassRescue:
		return "pass2"
	default:
		return "standard"
	}
}

// A scored route. Candidates are value objects and are not mutated after
// the scorer creates them.
type Candidate struct {
	Route    Route
	Hazards  HazardCount
	Pass     Pass
	Waypoint *Coordinates
}

// Duration rounded to the nearest minute, for display.
func (c Candidate) DurationMinutes() int {
	return int(math.Round(c.Route.DurationSeconds / 60))
}

// Distance in kilometers rounded to two decimals, for display.
func (c Candidate) DistanceKm() float64 {
	return math.Round(c.Route.DistanceMeters/10) / 100
}

type SelectionStage string

const (
	StageNoHazardData    SelectionStage = "no_hazard_data"
	StageStandardClear   SelectionStage = "standard_clear"
	StagePass1Sufficient SelectionStage = "pass1_sufficient"
	StagePass2           SelectionStage = "pass2"
)

// The outcome of one planning run. Safe is nil when no alternative
// with fewer hazards than the standard route was found.
type SelectionResult struct {
	Standard            Candidate
	Safe                *Candidate
	HazardDataAvailable bool
	Stage               SelectionStage
}
