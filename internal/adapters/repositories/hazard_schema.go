package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"strings"
)

// Initialize the Postgres hazard schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createHazardsQuery := `
	CREATE TABLE IF NOT EXISTS hazards (
		hazard_id TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		hazard_type TEXT NOT NULL DEFAULT '',
		operator TEXT NOT NULL DEFAULT ''
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_hazards_lon_lat
	ON hazards(lon, lat);
	`

	statements := []string{
		createHazardsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Upsert hazards into the hazards table.
func SeedHazards(ctx context.Context, db *sql.DB, hazards []domain.Hazard) error {
	for i, h := range hazards {
		if strings.TrimSpace(h.ID) == "" {
			return fmt.Errorf("seed hazards: item at index %d: id cannot be empty", i+1)
		}
		if err := h.Location.Validate(); err != nil {
			return fmt.Errorf("seed hazards: hazard %q: %w", h.ID, err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed hazards: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO hazards (hazard_id, lon, lat, hazard_type, operator)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (hazard_id) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		hazard_type = EXCLUDED.hazard_type,
		operator = EXCLUDED.operator;
	`)
	if err != nil {
		return fmt.Errorf("seed hazards: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range hazards {
		if _, err := stmt.ExecContext(ctx, h.ID, h.Location.Lon, h.Location.Lat, h.Type, h.Operator); err != nil {
			return fmt.Errorf("seed hazards: insert hazard_id=%s: %w", h.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed hazards: commit tx: %w", err)
	}

	return nil
}
