package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderMapbox = "mapbox"
	ProviderORS    = "ors"

	HazardSourceFile     = "file"
	HazardSourcePostgres = "postgres"
)

type Config struct {
	Port string

	DirectionsProvider string
	MapboxToken        string
	ORSAPIKey          string

	HazardSource string
	HazardFile   string
	DatabaseURL  string

	// RedisURL enables the directions cache when set.
	RedisURL           string
	DirectionsCacheTTL time.Duration

	// RabbitMQURL enables plan events when set.
	RabbitMQURL string

	FanoutLimit int
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv reads .env into the environment if present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads the service configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:               Get("PORT", "8080"),
		DirectionsProvider: strings.ToLower(Get("DIRECTIONS_PROVIDER", ProviderMapbox)),
		MapboxToken:        Get("MAPBOX_TOKEN", ""),
		ORSAPIKey:          Get("ORS_API_KEY", ""),
		HazardSource:       strings.ToLower(Get("HAZARD_SOURCE", HazardSourceFile)),
		HazardFile:         Get("HAZARD_FILE", "data/camera.geojson"),
		DatabaseURL:        Get("DATABASE_URL", ""),
		RedisURL:           Get("REDIS_URL", ""),
		RabbitMQURL:        Get("RABBITMQ_URL", ""),
	}

	ttl, err := time.ParseDuration(Get("DIRECTIONS_CACHE_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("config: DIRECTIONS_CACHE_TTL: %w", err)
	}
	cfg.DirectionsCacheTTL = ttl

	limit, err := strconv.Atoi(Get("FANOUT_LIMIT", "8"))
	if err != nil {
		return Config{}, fmt.Errorf("config: FANOUT_LIMIT: %w", err)
	}
	if limit < 0 {
		return Config{}, errors.New("config: FANOUT_LIMIT must be >= 0")
	}
	cfg.FanoutLimit = limit

	switch cfg.DirectionsProvider {
	case ProviderMapbox:
		if cfg.MapboxToken == "" {
			return Config{}, errors.New("config: MAPBOX_TOKEN is required")
		}
	case ProviderORS:
		if cfg.ORSAPIKey == "" {
			return Config{}, errors.New("config: ORS_API_KEY is required")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown DIRECTIONS_PROVIDER %q", cfg.DirectionsProvider)
	}

	switch cfg.HazardSource {
	case HazardSourceFile:
	case HazardSourcePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("config: DATABASE_URL is required for HAZARD_SOURCE=postgres")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown HAZARD_SOURCE %q", cfg.HazardSource)
	}

	return cfg, nil
}
