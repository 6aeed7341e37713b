package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"glaw-backend/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	drop := flag.Bool("drop", false, "drop existing laws and jurisdictions tables first (development only)")
	flag.Parse()

	config.LoadDotEnv()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Enable pgvector extension
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
	} else {
		log.Println("✓ pgvector extension enabled")
	}

	if *drop {
		_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS laws, jurisdictions CASCADE")
		if err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✓ Dropped existing laws and jurisdictions tables (if any)")
	}

	tables := []struct {
		name string
		sql  string
	}{
		{
			name: "jurisdictions",
			sql: `
CREATE TABLE IF NOT EXISTS jurisdictions (
    jurisdiction_id BIGSERIAL PRIMARY KEY,
    code VARCHAR(8) NOT NULL UNIQUE,
    name VARCHAR(100) NOT NULL
);`,
		},
		{
			name: "laws",
			sql: fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS laws (
    law_id BIGSERIAL PRIMARY KEY,
    jurisdiction_id BIGINT NOT NULL REFERENCES jurisdictions(jurisdiction_id),
    title VARCHAR(255) NOT NULL,
    article_no VARCHAR(100) NOT NULL,
    content TEXT NOT NULL,

    -- query embeddings are L2-normalized; documents must be too
    embedding vector(%d),

    created_at TIMESTAMP DEFAULT NOW()
);`, cfg.EmbeddingDimension),
		},
	}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, table.sql); err != nil {
			log.Fatalf("Failed to create %s table: %v", table.name, err)
		}
		log.Printf("✓ Created %s table", table.name)
	}

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "Vector similarity search (HNSW, L2)",
			sql: `CREATE INDEX IF NOT EXISTS idx_laws_embedding_hnsw ON laws
USING hnsw (embedding vector_l2_ops)
WITH (m = 16, ef_construction = 64);`,
		},
		{
			name: "Jurisdiction filtering",
			sql:  "CREATE INDEX IF NOT EXISTS idx_laws_jurisdiction ON laws(jurisdiction_id);",
		},
	}

	for _, idx := range indexes {
		_, err = pool.Exec(ctx, idx.sql)
		if err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
		} else {
			log.Printf("✓ Created index: %s", idx.name)
		}
	}

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Println("   Tables: jurisdictions, laws")
	fmt.Printf("   Embedding dimension: %d\n", cfg.EmbeddingDimension)
}
