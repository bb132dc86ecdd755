package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/platform/obs"
	"ghostmap-route-service/internal/ports"
	"net/http"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var _ ports.DirectionsGateway = (*MapboxDirectionsGateway)(nil)

// MapboxDirectionsGateway implements DirectionsGateway with the Mapbox
// Directions API walking profile. Safe for concurrent use.
type MapboxDirectionsGateway struct {
	session *http.Client
	token   string
	baseURL string
	profile string
}

func NewMapboxDirectionsGateway(token string) (*MapboxDirectionsGateway, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("mapbox access token is empty")
	}

	return &MapboxDirectionsGateway{
		session: &http.Client{Timeout: defaultTimeout},
		token:   token,
		baseURL: "https://api.mapbox.com",
		profile: "mapbox/walking",
	}, nil
}

type mapboxResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry *geojson.Geometry `json:"geometry"`
		Duration float64           `json:"duration"`
		Distance float64           `json:"distance"`
	} `json:"routes"`
}

func (m *MapboxDirectionsGateway) GetRoute(
	ctx context.Context,
	start, end domain.Coordinates,
	waypoint *domain.Coordinates,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, "mapbox.GetRoute")(&err)

	pairs := make([]string, 0, 3)
	for _, c := range stops(start, end, waypoint) {
		pairs = append(pairs, fmt.Sprintf("%f,%f", c.Lon, c.Lat))
	}

	endpoint := fmt.Sprintf(
		"%s/directions/v5/%s/%s",
		m.baseURL, m.profile, strings.Join(pairs, ";"),
	)

	req, err := newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Route{}, fmt.Errorf("mapbox directions request: %w", err)
	}

	q := req.URL.Query()
	q.Set("geometries", "geojson")
	q.Set("overview", "full")
	q.Set("access_token", m.token)
	req.URL.RawQuery = q.Encode()

	resp, err := do(m.session, req)
	if err != nil {
		return domain.Route{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Route{}, fmt.Errorf("decode mapbox directions response: %w", err)
	}

	if decoded.Code != "Ok" {
		return domain.Route{}, fmt.Errorf("mapbox directions: code=%s message=%s", decoded.Code, decoded.Message)
	}
	if len(decoded.Routes) == 0 {
		return domain.Route{}, errors.New("mapbox directions: no routes returned")
	}

	r := decoded.Routes[0]
	if r.Geometry == nil {
		return domain.Route{}, errors.New("mapbox directions: route has no geometry")
	}

	path, err := pathFromGeometry(r.Geometry.Coordinates)
	if err != nil {
		return domain.Route{}, fmt.Errorf("mapbox directions: %w", err)
	}

	return domain.Route{
		Path:            path,
		DurationSeconds: r.Duration,
		DistanceMeters:  r.Distance,
	}, nil
}

func pathFromGeometry(g orb.Geometry) ([]domain.Coordinates, error) {
	ls, ok := g.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("expected LineString geometry, got %T", g)
	}
	if len(ls) < 2 {
		return nil, fmt.Errorf("route geometry has %d points", len(ls))
	}

	path := make([]domain.Coordinates, 0, len(ls))
	for _, p := range ls {
		path = append(path, domain.FromPoint(p))
	}
	return path, nil
}
