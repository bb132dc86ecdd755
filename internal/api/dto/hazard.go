package dto

import (
	"ghostmap-route-service/internal/domain"

	"github.com/paulmach/orb/geojson"
)

// HazardCollection renders hazards as a GeoJSON FeatureCollection of points.
func HazardCollection(hazards []domain.Hazard) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, h := range hazards {
		f := geojson.NewFeature(h.Location.Point())
		f.ID = h.ID
		f.Properties["id"] = h.ID
		if h.Type != "" {
			f.Properties["type"] = h.Type
		}
		if h.Operator != "" {
			f.Properties["operator"] = h.Operator
		}
		fc.Append(f)
	}
	return fc
}
