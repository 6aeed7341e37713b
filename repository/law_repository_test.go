package repository

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestLawsQuery_AllJurisdictions(t *testing.T) {
	vec := pgvector.NewVector([]float32{1, 0})
	query, args := nearestLawsQuery(vec, nil, 3)

	assert.Contains(t, query, "embedding <-> $1 AS distance")
	assert.Contains(t, query, "WHERE embedding IS NOT NULL\n")
	assert.NotContains(t, query, "jurisdiction_id = $")
	assert.Contains(t, query, "ORDER BY distance, law_id")
	assert.Contains(t, query, "LIMIT $2")
	assert.Equal(t, []interface{}{vec, 3}, args)
}

func TestNearestLawsQuery_OneJurisdiction(t *testing.T) {
	vec := pgvector.NewVector([]float32{1, 0})
	id := int64(82)
	query, args := nearestLawsQuery(vec, &id, 5)

	assert.Contains(t, query, "AND jurisdiction_id = $2")
	assert.Contains(t, query, "LIMIT $3")
	assert.Equal(t, []interface{}{vec, int64(82), 5}, args)
}

func TestLawRepository_RejectsWrongDimension(t *testing.T) {
	repo := NewLawRepository(nil, 768)
	_, err := repo.SearchNearest(context.Background(), []float32{1, 2, 3}, nil, 3)
	assert.ErrorContains(t, err, "768 dimensions")
}

// integrationPool connects to TEST_DATABASE_URL and seeds a tiny 3-dimensional
// corpus in a throwaway schema
func integrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	stmts := []string{
		`DROP TABLE IF EXISTS laws, jurisdictions`,
		`CREATE TABLE jurisdictions (jurisdiction_id BIGINT PRIMARY KEY, code TEXT NOT NULL, name TEXT NOT NULL)`,
		`CREATE TABLE laws (
			law_id BIGINT PRIMARY KEY,
			jurisdiction_id BIGINT NOT NULL REFERENCES jurisdictions(jurisdiction_id),
			title TEXT NOT NULL,
			article_no TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(3))`,
		`INSERT INTO jurisdictions VALUES (1, 'KR', 'South Korea'), (2, 'SG', 'Singapore')`,
		`INSERT INTO laws VALUES
			(10, 1, 'Food Act', 'Article 1', 'a', '[1,0,0]'),
			(11, 1, 'Food Act', 'Article 2', 'b', '[0,1,0]'),
			(12, 1, 'Food Act', 'Article 3', 'c', '[0,1,0]'),
			(13, 1, 'Draft Act', 'Article 1', 'd', NULL),
			(20, 2, 'Sale of Food Act', 'Section 4', 'e', '[1,0,0]')`,
	}
	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DROP TABLE IF EXISTS laws, jurisdictions`)
	})
	return pool
}

func TestLawRepository_SearchNearest_Integration(t *testing.T) {
	pool := integrationPool(t)
	repo := NewLawRepository(pool, 3)
	kr := int64(1)

	got, err := repo.SearchNearest(context.Background(), []float32{0, 1, 0}, &kr, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(11), got[0].Law.ID)
	assert.Equal(t, int64(12), got[1].Law.ID, "ties ordered by law_id")
	assert.Equal(t, int64(10), got[2].Law.ID)
	assert.InDelta(t, 0.0, got[0].Distance, 1e-6)
	assert.InDelta(t, 1.41421356, got[2].Distance, 1e-6)

	all, err := repo.SearchNearest(context.Background(), []float32{1, 0, 0}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4, "laws without an embedding are skipped")
}

func TestJurisdictionRepository_Integration(t *testing.T) {
	pool := integrationPool(t)
	repo := NewJurisdictionRepository(pool)

	names, err := repo.NamesByID(context.Background(), []int64{2, 99})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{2: "Singapore"}, names)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "KR", list[0].Code)
}

func TestJurisdictionRepository_NamesByID_Empty(t *testing.T) {
	names, err := NewJurisdictionRepository(nil).NamesByID(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, names)
}
