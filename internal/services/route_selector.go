package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/platform/obs"
	"ghostmap-route-service/internal/ports"
	"log"
	"slices"

	"golang.org/x/sync/errgroup"
)

type SelectRouteRequest struct {
	Start *domain.Coordinates
	End   *domain.Coordinates
	// HazardsReady is false when the hazard set failed to load.
	HazardsReady bool
	// FanoutLimit bounds concurrent gateway calls within a pass.
	// Zero runs every waypoint of a pass at once.
	FanoutLimit int
}

// SelectRoute plans a walking route that avoids hazards.
//
// The direct route is fetched first; its failure is the only fatal error.
// With hazard data available, eight detours around the midpoint are tried in
// parallel and the candidate with the fewest hazards (then the shortest
// duration) wins. If that winner still passes a hazard, four larger detours
// are tried and replace it only when strictly better. This is a bounded
// heuristic, not an exhaustive search.
func SelectRoute(
	ctx context.Context,
	req SelectRouteRequest,
	gateway ports.DirectionsGateway,
	hazards ports.HazardIndex,
) (_ *domain.SelectionResult, err error) {
	defer obs.Time(ctx, "route.SelectRoute")(&err)

	if req.Start == nil || req.End == nil {
		return nil, ErrMissingEndpoint
	}
	if gateway == nil {
		return nil, errors.New("select route: directions gateway is nil")
	}

	start, end := *req.Start, *req.End

	base, err := gateway.GetRoute(ctx, start, end, nil)
	if err != nil {
		return nil, fmt.Errorf("select route: %w: %w", ErrNoBaseRoute, err)
	}
	if len(base.Path) < 2 {
		return nil, fmt.Errorf("select route: %w: provider returned an empty route", ErrNoBaseRoute)
	}

	if !req.HazardsReady || hazards == nil {
		return &domain.SelectionResult{
			Standard: ScoreRoute(base, nil, domain.PassStandard, nil),
			Stage:    domain.StageNoHazardData,
		}, nil
	}

	standard := ScoreRoute(base, hazards, domain.PassStandard, nil)
	result := &domain.SelectionResult{
		Standard:            standard,
		HazardDataAvailable: true,
		Stage:               domain.StageStandardClear,
	}
	if standard.Hazards == 0 {
		return result, nil
	}

	pool := scoreWaypoints(ctx, req, gateway, hazards, domain.PassWideNet, Pass1Waypoints(start, end))
	pool = append(pool, standard)
	best := bestCandidate(pool)
	result.Stage = domain.StagePass1Sufficient

	if best.Hazards > 0 {
		log.Printf("req_id=%s op=route.SelectRoute pass1_best=%d escalating=pass2", obs.RequestID(ctx), best.Hazards)
		result.Stage = domain.StagePass2

		rescue := scoreWaypoints(ctx, req, gateway, hazards, domain.PassRescue, Pass2Waypoints(start, end))
		if len(rescue) > 0 {
			if r := bestCandidate(rescue); r.Hazards.Compare(best.Hazards) < 0 {
				best = r
			}
		}
	}

	// Equal hazard counts do not justify a detour.
	if best.Hazards.Compare(standard.Hazards) < 0 {
		safe := best
		result.Safe = &safe
	}

	return result, nil
}

// scoreWaypoints fetches and scores one route per waypoint in parallel.
// Failed waypoints are logged and dropped. Survivors keep waypoint order.
func scoreWaypoints(
	ctx context.Context,
	req SelectRouteRequest,
	gateway ports.DirectionsGateway,
	hazards ports.HazardIndex,
	pass domain.Pass,
	waypoints []domain.Coordinates,
) []domain.Candidate {
	start, end := *req.Start, *req.End
	scored := make([]*domain.Candidate, len(waypoints))

	var g errgroup.Group
	if req.FanoutLimit > 0 {
		g.SetLimit(req.FanoutLimit)
	}

	for i, wp := range waypoints {
		i, wp := i, wp
		g.Go(func() error {
			route, err := gateway.GetRoute(ctx, start, end, &wp)
			if err == nil && len(route.Path) < 2 {
				err = errors.New("empty route")
			}
			if err != nil {
				log.Printf(
					"req_id=%s op=route.detour pass=%s waypoint=%.6f,%.6f err=%v",
					obs.RequestID(ctx), pass, wp.Lon, wp.Lat, err,
				)
				return nil
			}

			c := ScoreRoute(route, hazards, pass, &wp)
			scored[i] = &c
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Candidate, 0, len(waypoints))
	for _, c := range scored {
		if c != nil {
			out = append(out, *c)
		}
	}

	return out
}

// bestCandidate orders by hazard count, then unrounded duration. The stable
// sort keeps pool order for exact ties so results are deterministic.
func bestCandidate(pool []domain.Candidate) domain.Candidate {
	sorted := slices.Clone(pool)
	slices.SortStableFunc(sorted, func(a, b domain.Candidate) int {
		if c := a.Hazards.Compare(b.Hazards); c != 0 {
			return c
		}
		return cmp.Compare(a.Route.DurationSeconds, b.Route.DurationSeconds)
	})

	return sorted[0]
}
