package dto

import "github.com/paulmach/orb/geojson"

type PointRequest struct {
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
}

// Start and end are optional at decode time so that a missing endpoint
// surfaces as the planner's own input error.
type PlanRequest struct {
	Start *PointRequest `json:"start"`
	End   *PointRequest `json:"end"`
}

type RouteResponse struct {
	Pass            string            `json:"pass"`
	Geometry        *geojson.Geometry `json:"geometry"`
	DurationMinutes int               `json:"duration_minutes"`
	DistanceKm      float64           `json:"distance_km"`
	HazardCount     *int              `json:"hazard_count"`
	HazardLabel     string            `json:"hazard_label"`
	Waypoint        []float64         `json:"waypoint,omitempty"`
}

type PlanResponse struct {
	PlanID     string         `json:"plan_id"`
	Stage      string         `json:"stage"`
	HazardData string         `json:"hazard_data"`
	Standard   RouteResponse  `json:"standard"`
	Safe       *RouteResponse `json:"safe"`
}
