// Command check-distance prints the nearest laws for a query with their L2
// distance and whether each would pass the configured threshold. Use it to tune
// CHAT_MAX_DISTANCE and COMPARE_MAX_DISTANCE against the live corpus.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"glaw-backend/config"
	"glaw-backend/repository"
	"glaw-backend/service"

	"github.com/fatih/color"
)

var (
	query          = flag.String("query", "", "question to embed (required)")
	jurisdictionID = flag.Int64("jurisdiction", 0, "jurisdiction id to search; 0 searches all")
	limit          = flag.Int("limit", 10, "number of candidates to list")
	mode           = flag.String("mode", "chat", "threshold to apply: chat or compare")
)

func main() {
	flag.Parse()
	if strings.TrimSpace(*query) == "" {
		log.Fatal("-query is required")
	}

	config.LoadDotEnv()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	policy := cfg.Chat
	if *mode == "compare" {
		policy = cfg.Compare
	}

	ctx := context.Background()

	providers, err := service.NewProviders(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize model clients:", err)
	}
	defer providers.Close()

	db, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	vector, err := providers.Embedder.Embed(ctx, *query)
	if err != nil {
		log.Fatalf("Embedding failed: %v", err)
	}

	var jid *int64
	if *jurisdictionID > 0 {
		jid = jurisdictionID
	}
	candidates, err := repository.NewLawRepository(db, cfg.EmbeddingDimension).SearchNearest(ctx, vector, jid, *limit)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	bold := color.New(color.Bold).SprintFunc()
	pass := color.New(color.FgGreen).SprintfFunc()
	fail := color.New(color.FgRed).SprintfFunc()

	rule := strings.Repeat("=", 100)
	fmt.Println(rule)
	fmt.Printf("%s %s\n", bold("Query:"), *query)
	fmt.Printf("%s %g (%s)\n", bold("Threshold:"), policy.MaxDistance, *mode)
	if jid != nil {
		fmt.Printf("%s %d\n", bold("Jurisdiction:"), *jid)
	} else {
		fmt.Printf("%s all\n", bold("Jurisdiction:"))
	}
	fmt.Println(rule)
	fmt.Printf("%-5s | %-10s | %-6s | %-8s | %-30s | %s\n", "Rank", "Distance", "Status", "Law ID", "Law", "Content")
	fmt.Println(strings.Repeat("-", 100))

	for i, c := range candidates {
		line := fmt.Sprintf("%-5d | %-10.5f | %-6s | %-8d | %-30s | %s",
			i+1, c.Distance, status(c.Distance, policy.MaxDistance), c.Law.ID,
			truncate(c.Law.Title+" "+c.Law.ArticleNo, 30), truncate(c.Law.Content, 40))
		if c.Distance <= policy.MaxDistance {
			fmt.Println(pass("%s", line))
		} else {
			fmt.Println(fail("%s", line))
		}
	}
	fmt.Println(rule)

	if len(candidates) == 0 {
		color.Yellow("No laws found. Check the jurisdiction id and that embeddings are loaded.")
	}
}

func status(distance, threshold float64) string {
	if distance <= threshold {
		return "PASS"
	}
	return "FAIL"
}

// truncate shortens s to n runes on one line
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
