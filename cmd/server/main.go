package main

import (
	"context"
	"ghostmap-route-service/internal/adapters/cache"
	"ghostmap-route-service/internal/adapters/directions"
	"ghostmap-route-service/internal/adapters/hazards"
	"ghostmap-route-service/internal/adapters/publisher"
	"ghostmap-route-service/internal/adapters/repositories"
	"ghostmap-route-service/internal/api"
	"ghostmap-route-service/internal/config"
	"ghostmap-route-service/internal/platform/db"
	"ghostmap-route-service/internal/ports"
	"ghostmap-route-service/internal/services"
	"io"
	"log"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	gateway, cacheConn, err := newGateway(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cacheConn.Close()

	// Hazards load once. Without them the planner still returns the standard route.
	store, err := loadHazards(ctx, cfg)
	if err != nil {
		log.Printf("hazards unavailable: %v", err)
	} else {
		log.Printf("hazards loaded count=%d source=%s", store.Len(), cfg.HazardSource)
	}

	deps := api.RouterDeps{
		Gateway:     gateway,
		Hazards:     store,
		FanoutLimit: cfg.FanoutLimit,
	}

	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("rabbitmq dial: %v", err)
		}
		defer conn.Close()

		pub, err := publisher.NewRabbitMQPlanPublisher(conn)
		if err != nil {
			log.Fatal(err)
		}
		deps.Publisher = pub
	}

	router := api.NewRouter(deps)

	// Write timeout covers a base route plus two sequential detour passes.
	log.Printf("Server listening addr=:%s provider=%s", cfg.Port, cfg.DirectionsProvider)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newGateway(ctx context.Context, cfg config.Config) (ports.DirectionsGateway, io.Closer, error) {
	var gateway ports.DirectionsGateway

	switch cfg.DirectionsProvider {
	case config.ProviderORS:
		gw, err := directions.NewORSDirectionsGateway(cfg.ORSAPIKey)
		if err != nil {
			return nil, nil, err
		}
		gateway = gw
	default:
		gw, err := directions.NewMapboxDirectionsGateway(cfg.MapboxToken)
		if err != nil {
			return nil, nil, err
		}
		gateway = gw
	}

	if cfg.RedisURL == "" {
		return gateway, nopCloser{}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)

	// An unreachable Redis only disables caching.
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("directions cache unavailable: %v", err)
	}

	return cache.NewRedisDirectionsCache(client, gateway, cfg.DirectionsCacheTTL), client, nil
}

func loadHazards(ctx context.Context, cfg config.Config) (*services.HazardStore, error) {
	if cfg.HazardSource == config.HazardSourcePostgres {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer conn.Close()

		return services.LoadHazardStore(ctx, repositories.NewPostgresHazardRepository(conn))
	}

	return services.LoadHazardStore(ctx, hazards.NewGeoJSONFileSource(cfg.HazardFile))
}
