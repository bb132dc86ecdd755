package hazards

import (
	"context"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/ports"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var _ ports.HazardSource = (*GeoJSONFileSource)(nil)

// GeoJSONFileSource loads hazards from a GeoJSON FeatureCollection of points,
// such as a published camera inventory.
type GeoJSONFileSource struct {
	Path string
}

func NewGeoJSONFileSource(path string) *GeoJSONFileSource {
	return &GeoJSONFileSource{Path: path}
}

func (s *GeoJSONFileSource) LoadHazards(ctx context.Context) ([]domain.Hazard, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("load hazards: read %q: %w", s.Path, err)
	}

	hazards, err := ParseGeoJSON(data)
	if err != nil {
		return nil, fmt.Errorf("load hazards: %q: %w", s.Path, err)
	}

	return hazards, nil
}

// ParseGeoJSON converts Point and MultiPoint features into hazards.
// Other geometry types are rejected.
func ParseGeoJSON(data []byte) ([]domain.Hazard, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	out := make([]domain.Hazard, 0, len(fc.Features))
	for i, f := range fc.Features {
		var points []orb.Point
		switch g := f.Geometry.(type) {
		case orb.Point:
			points = []orb.Point{g}
		case orb.MultiPoint:
			points = g
		default:
			return nil, fmt.Errorf("parse geojson: feature %d: unsupported geometry %T", i+1, f.Geometry)
		}

		id := featureID(f, i)
		for j, p := range points {
			hid := id
			if len(points) > 1 {
				hid = fmt.Sprintf("%s-%d", id, j+1)
			}

			h := domain.Hazard{
				ID:       hid,
				Location: domain.FromPoint(p),
				Type:     firstString(f.Properties, "type", "camera_type", "category"),
				Operator: firstString(f.Properties, "operator", "owner"),
			}
			if err := h.Location.Validate(); err != nil {
				return nil, fmt.Errorf("parse geojson: feature %d: %w", i+1, err)
			}
			out = append(out, h)
		}
	}

	return out, nil
}

func featureID(f *geojson.Feature, idx int) string {
	if f.ID != nil {
		if s := strings.TrimSpace(fmt.Sprint(f.ID)); s != "" {
			return s
		}
	}
	if s := firstString(f.Properties, "id", "ID", "identifier"); s != "" {
		return s
	}
	return fmt.Sprintf("hazard-%d", idx+1)
}

func firstString(props geojson.Properties, keys ...string) string {
	for _, k := range keys {
		v, ok := props[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	return ""
}
