package models

// Jurisdiction represents a country or legal system partition of the corpus
type Jurisdiction struct {
	ID   int64  `json:"jurisdiction_id"`
	Code string `json:"code"` // e.g. "KR", "GB", "SG"
	Name string `json:"name"`
}

// Law represents a single statute article from the knowledge base
type Law struct {
	ID             int64     `json:"law_id"`
	JurisdictionID int64     `json:"jurisdiction_id"`
	Title          string    `json:"title"`
	ArticleNo      string    `json:"article_no"`
	Content        string    `json:"content"`
	Embedding      []float32 `json:"-"`
}

// RetrievalCandidate pairs a law with its L2 distance to the query vector
type RetrievalCandidate struct {
	Law      Law     `json:"law"`
	Distance float64 `json:"distance"`
}

// LawIDs returns the law ids of the candidates, preserving order
func LawIDs(candidates []RetrievalCandidate) []int64 {
	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Law.ID)
	}
	return ids
}
