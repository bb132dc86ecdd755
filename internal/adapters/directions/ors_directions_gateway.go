package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/platform/obs"
	"ghostmap-route-service/internal/ports"
	"io"
	"net/http"

	"github.com/paulmach/orb/geojson"
)

var _ ports.DirectionsGateway = (*ORSDirectionsGateway)(nil)

// ORSDirectionsGateway implements DirectionsGateway using the
// OpenRouteService directions endpoint with the foot-walking profile.
//
// The provider is safe for concurrent use.
type ORSDirectionsGateway struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
}

func NewORSDirectionsGateway(apiKey string) (*ORSDirectionsGateway, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSDirectionsGateway{
		session: &http.Client{Timeout: defaultTimeout},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "foot-walking",
	}, nil
}

type orsDirectionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type orsSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

func (o *ORSDirectionsGateway) GetRoute(
	ctx context.Context,
	start, end domain.Coordinates,
	waypoint *domain.Coordinates,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, "ors.GetRoute")(&err)

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	bodyObj := orsDirectionsRequest{}
	for _, c := range stops(start, end, waypoint) {
		bodyObj.Coordinates = append(bodyObj.Coordinates, c.CoordsToList())
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return domain.Route{}, fmt.Errorf("marshal directions request: %w", err)
	}

	req, err := newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Route{}, fmt.Errorf("ORS directions request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)

	resp, err := do(o.session, req)
	if err != nil {
		return domain.Route{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Route{}, fmt.Errorf("read directions response: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return domain.Route{}, fmt.Errorf("decode directions response: %w", err)
	}
	if len(fc.Features) == 0 {
		return domain.Route{}, errors.New("ORS directions: no routes returned")
	}

	f := fc.Features[0]
	path, err := pathFromGeometry(f.Geometry)
	if err != nil {
		return domain.Route{}, fmt.Errorf("ORS directions: %w", err)
	}

	// ORS omits distance/duration for zero-length legs.
	var summary orsSummary
	if s, ok := f.Properties["summary"]; ok {
		b, err := json.Marshal(s)
		if err != nil {
			return domain.Route{}, fmt.Errorf("ORS directions summary: %w", err)
		}
		if err := json.Unmarshal(b, &summary); err != nil {
			return domain.Route{}, fmt.Errorf("ORS directions summary: %w", err)
		}
	}

	return domain.Route{
		Path:            path,
		DurationSeconds: summary.Duration,
		DistanceMeters:  summary.Distance,
	}, nil
}
