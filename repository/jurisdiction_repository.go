package repository

import (
	"context"
	"fmt"

	"glaw-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// JurisdictionRepository handles database operations for jurisdictions
type JurisdictionRepository struct {
	db *pgxpool.Pool
}

// NewJurisdictionRepository creates a new jurisdiction repository
func NewJurisdictionRepository(db *pgxpool.Pool) *JurisdictionRepository {
	return &JurisdictionRepository{db: db}
}

// NamesByID resolves display names for the given ids in one query.
// Unknown ids are absent from the map.
func (r *JurisdictionRepository) NamesByID(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT jurisdiction_id, name
		FROM jurisdictions
		WHERE jurisdiction_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query jurisdictions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan jurisdiction: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jurisdictions: %w", err)
	}
	return names, nil
}

// List returns every jurisdiction ordered by id
func (r *JurisdictionRepository) List(ctx context.Context) ([]models.Jurisdiction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT jurisdiction_id, code, name
		FROM jurisdictions
		ORDER BY jurisdiction_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jurisdictions: %w", err)
	}
	defer rows.Close()

	jurisdictions := []models.Jurisdiction{}
	for rows.Next() {
		var j models.Jurisdiction
		if err := rows.Scan(&j.ID, &j.Code, &j.Name); err != nil {
			return nil, fmt.Errorf("failed to scan jurisdiction: %w", err)
		}
		jurisdictions = append(jurisdictions, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jurisdictions: %w", err)
	}
	return jurisdictions, nil
}
