package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/platform/obs"
	"ghostmap-route-service/internal/ports"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ ports.DirectionsGateway = (*RedisDirectionsCache)(nil)

// RedisDirectionsCache is a read-through cache in front of a DirectionsGateway.
// Only successful routes are stored. Redis errors never fail a lookup; the
// request falls through to the wrapped gateway instead.
type RedisDirectionsCache struct {
	client *redis.Client
	next   ports.DirectionsGateway
	ttl    time.Duration
	prefix string
}

func NewRedisDirectionsCache(client *redis.Client, next ports.DirectionsGateway, ttl time.Duration) *RedisDirectionsCache {
	return &RedisDirectionsCache{
		client: client,
		next:   next,
		ttl:    ttl,
		prefix: "directions:v1:",
	}
}

type cachedRoute struct {
	Path            [][2]float64 `json:"path"`
	DurationSeconds float64      `json:"duration_seconds"`
	DistanceMeters  float64      `json:"distance_meters"`
}

// key identifies a request by its stops at micro-degree precision.
func (c *RedisDirectionsCache) key(start, end domain.Coordinates, waypoint *domain.Coordinates) string {
	k := fmt.Sprintf("%s%.6f,%.6f;", c.prefix, start.Lon, start.Lat)
	if waypoint != nil {
		k += fmt.Sprintf("%.6f,%.6f;", waypoint.Lon, waypoint.Lat)
	}
	return k + fmt.Sprintf("%.6f,%.6f", end.Lon, end.Lat)
}

func (c *RedisDirectionsCache) GetRoute(
	ctx context.Context,
	start, end domain.Coordinates,
	waypoint *domain.Coordinates,
) (domain.Route, error) {
	key := c.key(start, end, waypoint)

	if route, ok := c.lookup(ctx, key); ok {
		return route, nil
	}

	route, err := c.next.GetRoute(ctx, start, end, waypoint)
	if err != nil {
		return domain.Route{}, err
	}

	if err := c.store(ctx, key, route); err != nil {
		log.Printf("req_id=%s directions cache write failed: %v", obs.RequestID(ctx), err)
	}

	return route, nil
}

func (c *RedisDirectionsCache) lookup(ctx context.Context, key string) (_ domain.Route, ok bool) {
	var err error
	defer obs.Time(ctx, "directions.cache.Get")(&err)

	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		err = nil
		return domain.Route{}, false
	}
	if err != nil {
		return domain.Route{}, false
	}

	var cr cachedRoute
	if err = json.Unmarshal(b, &cr); err != nil {
		err = fmt.Errorf("decode cached route %q: %w", key, err)
		return domain.Route{}, false
	}

	path := make([]domain.Coordinates, 0, len(cr.Path))
	for _, p := range cr.Path {
		path = append(path, domain.Coordinates{Lon: p[0], Lat: p[1]})
	}

	return domain.Route{
		Path:            path,
		DurationSeconds: cr.DurationSeconds,
		DistanceMeters:  cr.DistanceMeters,
	}, true
}

func (c *RedisDirectionsCache) store(ctx context.Context, key string, route domain.Route) error {
	cr := cachedRoute{
		Path:            make([][2]float64, 0, len(route.Path)),
		DurationSeconds: route.DurationSeconds,
		DistanceMeters:  route.DistanceMeters,
	}
	for _, p := range route.Path {
		cr.Path = append(cr.Path, [2]float64{p.Lon, p.Lat})
	}

	payload, err := json.Marshal(cr)
	if err != nil {
		return fmt.Errorf("encode route: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	return nil
}
