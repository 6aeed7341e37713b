package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"glaw-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetriever_OrdersByDistanceThenLawID(t *testing.T) {
	store := &fakeStore{results: map[int64][]models.RetrievalCandidate{
		1: {candidate(30, 0.9), candidate(20, 0.4), candidate(11, 0.4), candidate(40, 0.1)},
	}}

	got, err := NewRetriever(store).Retrieve(context.Background(), []float32{1}, ptr(1), 4)
	require.NoError(t, err)

	assert.Equal(t, []int64{40, 11, 20, 30}, models.LawIDs(got))
	assert.Equal(t, 4, store.lastK)
}

func TestRetriever_TruncatesToK(t *testing.T) {
	store := &fakeStore{results: map[int64][]models.RetrievalCandidate{
		0: {candidate(1, 0.1), candidate(2, 0.2), candidate(3, 0.3), candidate(4, 0.4)},
	}}

	got, err := NewRetriever(store).Retrieve(context.Background(), []float32{1}, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, models.LawIDs(got))
}

func TestRetriever_CollapsesDuplicateLaws(t *testing.T) {
	store := &fakeStore{results: map[int64][]models.RetrievalCandidate{
		0: {candidate(7, 0.8), candidate(7, 0.2), candidate(9, 0.5)},
	}}

	got, err := NewRetriever(store).Retrieve(context.Background(), []float32{1}, nil, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(7), got[0].Law.ID)
	assert.InDelta(t, 0.2, got[0].Distance, 1e-9)
	assert.Equal(t, int64(9), got[1].Law.ID)
}

func TestRetriever_IsDeterministic(t *testing.T) {
	input := []models.RetrievalCandidate{candidate(5, 0.3), candidate(2, 0.3), candidate(8, 0.3)}
	store := &fakeStore{results: map[int64][]models.RetrievalCandidate{0: input}}
	r := NewRetriever(store)

	first, err := r.Retrieve(context.Background(), []float32{1}, nil, 3)
	require.NoError(t, err)
	second, err := r.Retrieve(context.Background(), []float32{1}, nil, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []int64{2, 5, 8}, models.LawIDs(first))
	// the store's slice is left untouched
	assert.Equal(t, int64(5), input[0].Law.ID)
}

func TestRetriever_EmptyResultIsNotAnError(t *testing.T) {
	store := &fakeStore{}
	got, err := NewRetriever(store).Retrieve(context.Background(), []float32{1}, ptr(3), 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetriever_Errors(t *testing.T) {
	t.Run("non-positive k", func(t *testing.T) {
		store := &fakeStore{}
		_, err := NewRetriever(store).Retrieve(context.Background(), []float32{1}, nil, 0)
		assert.ErrorIs(t, err, ErrRetrievalFailed)
		assert.Zero(t, store.calls)
	})

	t.Run("store failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		store := &fakeStore{errs: map[int64]error{0: cause}}
		_, err := NewRetriever(store).Retrieve(context.Background(), []float32{1}, nil, 3)
		assert.ErrorIs(t, err, ErrRetrievalFailed)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("invalid distance", func(t *testing.T) {
		for _, d := range []float64{-0.1, math.NaN()} {
			store := &fakeStore{results: map[int64][]models.RetrievalCandidate{0: {candidate(1, d)}}}
			_, err := NewRetriever(store).Retrieve(context.Background(), []float32{1}, nil, 3)
			assert.ErrorIs(t, err, ErrRetrievalFailed)
		}
	})
}

func TestFilterByDistance(t *testing.T) {
	candidates := []models.RetrievalCandidate{candidate(1, 0.40), candidate(2, 0.62), candidate(3, 1.10)}

	evidence := FilterByDistance(candidates, 0.95)
	assert.Equal(t, EvidenceFound, evidence.Status())
	assert.Equal(t, []int64{1, 2}, evidence.LawIDs())
	assert.Equal(t, 0.95, evidence.MaxDistance)

	t.Run("boundary is inclusive", func(t *testing.T) {
		evidence := FilterByDistance([]models.RetrievalCandidate{candidate(1, 0.95)}, 0.95)
		assert.Equal(t, 1, evidence.Len())
	})

	t.Run("nothing within threshold", func(t *testing.T) {
		evidence := FilterByDistance([]models.RetrievalCandidate{candidate(1, 1.2)}, 0.95)
		assert.Equal(t, NoEvidence, evidence.Status())
		assert.NotNil(t, evidence.LawIDs())
		assert.Empty(t, evidence.LawIDs())
	})
}

func TestEvidenceStatus_String(t *testing.T) {
	assert.Equal(t, "no_evidence", NoEvidence.String())
	assert.Equal(t, "evidence", EvidenceFound.String())
}
