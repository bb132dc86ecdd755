package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/platform/obs"
	"ghostmap-route-service/internal/ports"
)

var _ ports.HazardSource = (*PostgresHazardRepository)(nil)

// Postgres-backed implementation of the HazardSource port.
type PostgresHazardRepository struct{ DB *sql.DB }

func NewPostgresHazardRepository(db *sql.DB) *PostgresHazardRepository {
	return &PostgresHazardRepository{DB: db}
}

// Return every hazard stored in the database.
func (r *PostgresHazardRepository) LoadHazards(ctx context.Context) (_ []domain.Hazard, err error) {
	defer obs.Time(ctx, "hazards.postgres.Load")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres hazard repository: DB is nil")
	}

	query := `
	SELECT
		hazard_id,
		lon,
		lat,
		hazard_type,
		operator
	FROM hazards
	ORDER BY hazard_id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load hazards: query hazards table: %w", err)
	}
	defer rows.Close()

	hazards := make([]domain.Hazard, 0, 256)
	for rows.Next() {
		var h domain.Hazard
		if err := rows.Scan(&h.ID, &h.Location.Lon, &h.Location.Lat, &h.Type, &h.Operator); err != nil {
			return nil, fmt.Errorf("load hazards: scan row: %w", err)
		}
		hazards = append(hazards, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load hazards: row iteration: %w", err)
	}

	return hazards, nil
}
