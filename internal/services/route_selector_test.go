package services

import (
	"context"
	"errors"
	"fmt"
	"ghostmap-route-service/internal/adapters/directions"
	"ghostmap-route-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testStart = domain.Coordinates{Lon: -73.58, Lat: 45.50}
	testEnd   = domain.Coordinates{Lon: -73.55, Lat: 45.51}

	// Hazard spots, each sitting on exactly one of the corridors below.
	onStandard = domain.Coordinates{Lon: -73.565, Lat: 45.505}
	onNorth    = domain.Coordinates{Lon: -73.565, Lat: 45.53}
	onSouth    = domain.Coordinates{Lon: -73.565, Lat: 45.48}
)

func corridor(lat float64) []domain.Coordinates {
	return []domain.Coordinates{{Lon: -73.58, Lat: lat}, {Lon: -73.55, Lat: lat}}
}

var (
	northCorridor    = corridor(45.53)
	southCorridor    = corridor(45.48)
	farNorthCorridor = corridor(45.56)
)

func walk(seconds float64, via ...domain.Coordinates) domain.Route {
	path := make([]domain.Coordinates, 0, len(via)+2)
	path = append(path, testStart)
	path = append(path, via...)
	path = append(path, testEnd)
	return domain.Route{Path: path, DurationSeconds: seconds, DistanceMeters: seconds * 1.4}
}

func hazardsAt(loc domain.Coordinates, n int, prefix string) []domain.Hazard {
	out := make([]domain.Hazard, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Hazard{ID: fmt.Sprintf("%s-%d", prefix, i), Location: loc, Type: "camera"})
	}
	return out
}

func newStore(t *testing.T, groups ...[]domain.Hazard) *HazardStore {
	t.Helper()
	var all []domain.Hazard
	for _, g := range groups {
		all = append(all, g...)
	}
	store, err := NewHazardStore(all)
	require.NoError(t, err)
	return store
}

func direct(route domain.Route) directions.MockRoute {
	return directions.MockRoute{Route: route}
}

func via(wp domain.Coordinates, route domain.Route) directions.MockRoute {
	return directions.MockRoute{Waypoint: &wp, Route: route}
}

func planRequest() SelectRouteRequest {
	start, end := testStart, testEnd
	return SelectRouteRequest{Start: &start, End: &end, HazardsReady: true}
}

func TestSelectRouteEmptyHazardSetStopsAtStandard(t *testing.T) {
	gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
		direct(walk(1200)),
	})
	store := newStore(t)

	res, err := SelectRoute(context.Background(), planRequest(), gw, store)
	require.NoError(t, err)

	assert.Equal(t, domain.HazardCount(0), res.Standard.Hazards)
	assert.Nil(t, res.Safe)
	assert.True(t, res.HazardDataAvailable)
	assert.Equal(t, domain.StageStandardClear, res.Stage)
	assert.Equal(t, 1, gw.Calls())
}

func TestSelectRoutePass1FindsClearDetour(t *testing.T) {
	p1 := Pass1Waypoints(testStart, testEnd)
	gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
		direct(walk(1200)),
		via(p1[0], walk(1500, southCorridor...)),
		via(p1[3], walk(1700, northCorridor...)),
		{Waypoint: &p1[5], Err: errors.New("provider timeout")},
	})
	store := newStore(t, hazardsAt(onStandard, 3, "std"), hazardsAt(onSouth, 1, "south"))

	res, err := SelectRoute(context.Background(), planRequest(), gw, store)
	require.NoError(t, err)

	assert.Equal(t, domain.HazardCount(3), res.Standard.Hazards)
	require.NotNil(t, res.Safe)
	assert.Equal(t, domain.HazardCount(0), res.Safe.Hazards)
	assert.Equal(t, domain.PassWideNet, res.Safe.Pass)
	assert.Equal(t, p1[3], *res.Safe.Waypoint)
	assert.Equal(t, domain.StagePass1Sufficient, res.Stage)

	assert.Equal(t, 1+len(p1), gw.Calls())
	for _, wp := range Pass2Waypoints(testStart, testEnd) {
		assert.False(t, gw.Called(&wp), "pass 2 must not run when pass 1 reaches zero")
	}
}

func TestSelectRoutePass2Rescue(t *testing.T) {
	p1 := Pass1Waypoints(testStart, testEnd)
	p2 := Pass2Waypoints(testStart, testEnd)
	gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
		direct(walk(1200)),
		via(p1[0], walk(1400, northCorridor...)),
		via(p1[1], walk(1300, northCorridor...)),
		via(p2[2], walk(2600, farNorthCorridor...)),
	})
	store := newStore(t, hazardsAt(onStandard, 2, "std"), hazardsAt(onNorth, 1, "north"))

	res, err := SelectRoute(context.Background(), planRequest(), gw, store)
	require.NoError(t, err)

	assert.Equal(t, domain.HazardCount(2), res.Standard.Hazards)
	require.NotNil(t, res.Safe)
	assert.Equal(t, domain.HazardCount(0), res.Safe.Hazards)
	assert.Equal(t, domain.PassRescue, res.Safe.Pass)
	assert.Equal(t, p2[2], *res.Safe.Waypoint)
	assert.Equal(t, domain.StagePass2, res.Stage)
	assert.Equal(t, 1+len(p1)+len(p2), gw.Calls())
}

func TestSelectRouteRescueMustBeStrictlyBetter(t *testing.T) {
	p1 := Pass1Waypoints(testStart, testEnd)
	p2 := Pass2Waypoints(testStart, testEnd)
	gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
		direct(walk(1200)),
		via(p1[0], walk(1500, northCorridor...)),
		via(p1[1], walk(1400, southCorridor...)),
		// Same count as the pass-1 winner but much faster: must not replace it.
		via(p2[0], walk(100, northCorridor...)),
	})
	store := newStore(t,
		hazardsAt(onStandard, 2, "std"),
		hazardsAt(onNorth, 1, "north"),
		hazardsAt(onSouth, 1, "south"),
	)

	res, err := SelectRoute(context.Background(), planRequest(), gw, store)
	require.NoError(t, err)

	require.NotNil(t, res.Safe)
	assert.Equal(t, domain.HazardCount(1), res.Safe.Hazards)
	assert.Equal(t, domain.PassWideNet, res.Safe.Pass)
	// Tie on hazards in pass 1 goes to the shorter duration.
	assert.Equal(t, p1[1], *res.Safe.Waypoint)
	assert.Equal(t, domain.StagePass2, res.Stage)
}

func TestSelectRouteEqualHazardCountReportsNoSafeRoute(t *testing.T) {
	p1 := Pass1Waypoints(testStart, testEnd)
	gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
		direct(walk(1200)),
		via(p1[0], walk(1100, northCorridor...)),
	})
	store := newStore(t, hazardsAt(onStandard, 1, "std"), hazardsAt(onNorth, 1, "north"))

	res, err := SelectRoute(context.Background(), planRequest(), gw, store)
	require.NoError(t, err)

	assert.Equal(t, domain.HazardCount(1), res.Standard.Hazards)
	assert.Nil(t, res.Safe)
	assert.Equal(t, domain.StagePass2, res.Stage)
}

func TestSelectRouteAllDetoursFail(t *testing.T) {
	gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
		direct(walk(1200)),
	})
	store := newStore(t, hazardsAt(onStandard, 2, "std"))

	res, err := SelectRoute(context.Background(), planRequest(), gw, store)
	require.NoError(t, err)

	assert.Equal(t, domain.HazardCount(2), res.Standard.Hazards)
	assert.Nil(t, res.Safe)
	assert.Equal(t, domain.StagePass2, res.Stage)
	assert.Equal(t, 1+8+4, gw.Calls())
}

func TestSelectRouteEmptyDetourRouteIsDropped(t *testing.T) {
	p1 := Pass1Waypoints(testStart, testEnd)
	gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
		direct(walk(1200)),
		via(p1[0], domain.Route{}),
	})
	store := newStore(t, hazardsAt(onStandard, 2, "std"))

	res, err := SelectRoute(context.Background(), planRequest(), gw, store)
	require.NoError(t, err)
	assert.Nil(t, res.Safe)
}

func TestSelectRouteBaseFailureIsFatal(t *testing.T) {
	for _, ready := range []bool{true, false} {
		gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
			{Err: errors.New("503 from provider")},
		})
		req := planRequest()
		req.HazardsReady = ready

		res, err := SelectRoute(context.Background(), req, gw, newStore(t))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoBaseRoute)
		assert.Nil(t, res)
		assert.Equal(t, 1, gw.Calls())
	}
}

func TestSelectRouteEmptyBaseRouteIsFatal(t *testing.T) {
	gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
		direct(domain.Route{Path: []domain.Coordinates{testStart}}),
	})

	res, err := SelectRoute(context.Background(), planRequest(), gw, newStore(t))
	assert.ErrorIs(t, err, ErrNoBaseRoute)
	assert.Nil(t, res)
}

func TestSelectRouteWithoutHazardData(t *testing.T) {
	gw := directions.NewMockDirectionsGateway([]directions.MockRoute{
		direct(walk(1200)),
	})
	req := planRequest()
	req.HazardsReady = false

	res, err := SelectRoute(context.Background(), req, gw, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.HazardCountUnknown, res.Standard.Hazards)
	assert.False(t, res.Standard.Hazards.Known())
	assert.False(t, res.HazardDataAvailable)
	assert.Nil(t, res.Safe)
	assert.Equal(t, domain.StageNoHazardData, res.Stage)
	assert.Equal(t, 1, gw.Calls())
}

func TestSelectRouteMissingEndpoint(t *testing.T) {
	gw := directions.NewMockDirectionsGateway(nil)
	start := testStart

	res, err := SelectRoute(context.Background(), SelectRouteRequest{Start: &start}, gw, nil)
	assert.ErrorIs(t, err, ErrMissingEndpoint)
	assert.Nil(t, res)
	assert.Equal(t, 0, gw.Calls())
}

func TestSelectRouteIsDeterministic(t *testing.T) {
	p1 := Pass1Waypoints(testStart, testEnd)
	p2 := Pass2Waypoints(testStart, testEnd)
	routes := []directions.MockRoute{
		direct(walk(1200)),
		via(p1[2], walk(1400, northCorridor...)),
		via(p1[6], walk(1400, northCorridor...)),
		via(p1[7], walk(1400, southCorridor...)),
		via(p2[1], walk(2500, farNorthCorridor...)),
		via(p2[3], walk(2500, farNorthCorridor...)),
	}
	store := newStore(t,
		hazardsAt(onStandard, 2, "std"),
		hazardsAt(onNorth, 1, "north"),
		hazardsAt(onSouth, 1, "south"),
	)

	first, err := SelectRoute(context.Background(), planRequest(), directions.NewMockDirectionsGateway(routes), store)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		req := planRequest()
		req.FanoutLimit = 1 + i%4
		got, err := SelectRoute(context.Background(), req, directions.NewMockDirectionsGateway(routes), store)
		require.NoError(t, err)
		require.Equal(t, first, got)
	}

	require.NotNil(t, first.Safe)
	// Exact ties keep waypoint order.
	assert.Equal(t, p2[1], *first.Safe.Waypoint)
}

func TestBestCandidateOrdering(t *testing.T) {
	pool := []domain.Candidate{
		{Hazards: domain.HazardCountUnknown, Route: domain.Route{DurationSeconds: 10}},
		{Hazards: 2, Route: domain.Route{DurationSeconds: 100}},
		{Hazards: 1, Route: domain.Route{DurationSeconds: 900}},
		{Hazards: 1, Route: domain.Route{DurationSeconds: 600}},
	}

	best := bestCandidate(pool)
	assert.Equal(t, domain.HazardCount(1), best.Hazards)
	assert.Equal(t, 600.0, best.Route.DurationSeconds)

	for _, c := range pool {
		assert.LessOrEqual(t, best.Hazards.Compare(c.Hazards), 0)
	}

	// Input pool is left untouched.
	assert.Equal(t, domain.HazardCountUnknown, pool[0].Hazards)
}
