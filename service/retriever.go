package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"glaw-backend/models"
)

// Retriever wraps a VectorStore into a jurisdiction-scoped, ordered candidate list
type Retriever struct {
	store VectorStore
}

// NewRetriever creates a new retriever
func NewRetriever(store VectorStore) *Retriever {
	return &Retriever{store: store}
}

// Retrieve returns at most k candidates ordered by ascending distance, ties broken
// by ascending law id. Duplicate law ids keep only their closest occurrence.
func (r *Retriever) Retrieve(
	ctx context.Context,
	vector []float32,
	jurisdictionID *int64,
	k int,
) ([]models.RetrievalCandidate, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrRetrievalFailed, k)
	}

	candidates, err := r.store.SearchNearest(ctx, vector, jurisdictionID, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	for _, c := range candidates {
		if c.Distance < 0 || math.IsNaN(c.Distance) {
			return nil, fmt.Errorf("%w: invalid distance %v for law %d", ErrRetrievalFailed, c.Distance, c.Law.ID)
		}
	}

	ordered := make([]models.RetrievalCandidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Distance != ordered[j].Distance {
			return ordered[i].Distance < ordered[j].Distance
		}
		return ordered[i].Law.ID < ordered[j].Law.ID
	})

	seen := make(map[int64]struct{}, len(ordered))
	unique := ordered[:0]
	for _, c := range ordered {
		if _, dup := seen[c.Law.ID]; dup {
			continue
		}
		seen[c.Law.ID] = struct{}{}
		unique = append(unique, c)
	}

	if len(unique) > k {
		unique = unique[:k]
	}
	return unique, nil
}

// EvidenceStatus tags whether a filtered evidence set can ground a generation
type EvidenceStatus int

const (
	NoEvidence EvidenceStatus = iota
	EvidenceFound
)

func (s EvidenceStatus) String() string {
	if s == EvidenceFound {
		return "evidence"
	}
	return "no_evidence"
}

// EvidenceSet is the ordered list of candidates that survived the distance filter
type EvidenceSet struct {
	Candidates  []models.RetrievalCandidate
	MaxDistance float64
}

// Status reports whether the set holds any evidence
func (e EvidenceSet) Status() EvidenceStatus {
	if len(e.Candidates) == 0 {
		return NoEvidence
	}
	return EvidenceFound
}

// Len returns the number of evidence documents
func (e EvidenceSet) Len() int {
	return len(e.Candidates)
}

// LawIDs returns the evidence law ids in evidence order; never nil
func (e EvidenceSet) LawIDs() []int64 {
	return models.LawIDs(e.Candidates)
}

// FilterByDistance drops every candidate farther than maxDistance, keeping order
func FilterByDistance(candidates []models.RetrievalCandidate, maxDistance float64) EvidenceSet {
	kept := make([]models.RetrievalCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Distance <= maxDistance {
			kept = append(kept, c)
		}
	}
	return EvidenceSet{Candidates: kept, MaxDistance: maxDistance}
}
