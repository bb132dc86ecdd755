package main

import (
	"context"
	"database/sql"
	"flag"
	"ghostmap-route-service/internal/adapters/hazards"
	"ghostmap-route-service/internal/adapters/repositories"
	"ghostmap-route-service/internal/config"
	"ghostmap-route-service/internal/platform/db"
	"log"
	"strings"
)

// hazardtool creates the hazards schema and loads a GeoJSON hazard file into Postgres.
func main() {
	config.LoadDotEnv()

	file := flag.String("file", config.Get("HAZARD_FILE", "data/camera.geojson"), "GeoJSON file of hazard points")
	schemaOnly := flag.Bool("schema-only", false, "create the schema without seeding")
	flag.Parse()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(ctx, conn, *file, *schemaOnly); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, file string, schemaOnly bool) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}
	log.Println("Schema ready.")

	if schemaOnly {
		return nil
	}

	list, err := hazards.NewGeoJSONFileSource(file).LoadHazards(ctx)
	if err != nil {
		return err
	}

	log.Printf("Seeding hazards count=%d file=%s", len(list), file)
	if err := repositories.SeedHazards(ctx, conn, list); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
