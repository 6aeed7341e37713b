package repository

import (
	"context"
	"fmt"
	"strings"

	"glaw-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// LawRepository handles vector search over the laws table
type LawRepository struct {
	db        *pgxpool.Pool
	dimension int
}

// NewLawRepository creates a new law repository. dimension is the width of the
// embedding column; 0 skips the check.
func NewLawRepository(db *pgxpool.Pool, dimension int) *LawRepository {
	return &LawRepository{db: db, dimension: dimension}
}

// nearestLawsQuery builds the k-nearest-neighbour query by L2 distance.
// Ties are ordered by law_id so LIMIT cuts deterministically.
func nearestLawsQuery(vector pgvector.Vector, jurisdictionID *int64, k int) (string, []interface{}) {
	args := []interface{}{vector}
	filter := "WHERE embedding IS NOT NULL"
	if jurisdictionID != nil {
		args = append(args, *jurisdictionID)
		filter += fmt.Sprintf(" AND jurisdiction_id = $%d", len(args))
	}
	args = append(args, k)

	query := fmt.Sprintf(`
		SELECT
			law_id,
			jurisdiction_id,
			title,
			article_no,
			content,
			embedding <-> $1 AS distance
		FROM laws
		%s
		ORDER BY distance, law_id
		LIMIT $%d`, filter, len(args))

	return strings.TrimSpace(query), args
}

// SearchNearest returns the k laws closest to vector, optionally restricted to
// one jurisdiction. Laws without an embedding never match.
func (r *LawRepository) SearchNearest(
	ctx context.Context,
	vector []float32,
	jurisdictionID *int64,
	k int,
) ([]models.RetrievalCandidate, error) {
	if r.dimension > 0 && len(vector) != r.dimension {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", r.dimension, len(vector))
	}

	query, args := nearestLawsQuery(pgvector.NewVector(vector), jurisdictionID, k)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query laws: %w", err)
	}
	defer rows.Close()

	candidates := make([]models.RetrievalCandidate, 0, k)
	for rows.Next() {
		var c models.RetrievalCandidate
		err := rows.Scan(
			&c.Law.ID,
			&c.Law.JurisdictionID,
			&c.Law.Title,
			&c.Law.ArticleNo,
			&c.Law.Content,
			&c.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan law: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating laws: %w", err)
	}

	return candidates, nil
}
