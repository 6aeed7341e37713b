package service

import (
	"context"
	"errors"
	"testing"

	"glaw-backend/config"
	"glaw-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chatPolicy = config.ThresholdPolicy{TopK: 3, MaxDistance: 0.95}

func newTestChatService(store *fakeStore, gen *fakeGenerator, extra ...PipelineOption) (*ChatService, *fakeEmbedder) {
	emb := &fakeEmbedder{vector: []float32{0.6, 0.8}}
	opts := append([]PipelineOption{
		WithEmbedder(emb),
		WithGenerator(gen),
		WithVectorStore(store),
		WithEmbeddingDimension(2),
	}, extra...)
	return NewChatService(chatPolicy, opts...), emb
}

func TestChatService_AnswersFromEvidenceWithinThreshold(t *testing.T) {
	store := &fakeStore{results: map[int64][]models.RetrievalCandidate{
		1: {candidate(101, 0.40), candidate(102, 0.62), candidate(103, 1.10)},
	}}
	gen := &fakeGenerator{output: "  Under Article 1, sellers must label food.\n"}
	svc, emb := newTestChatService(store, gen)

	got, err := svc.Answer(context.Background(), ChatRequest{Query: "Do I need a label?", JurisdictionID: ptr(1)})
	require.NoError(t, err)

	assert.True(t, got.SearchSuccess)
	assert.Equal(t, []int64{101, 102}, got.RelatedLawIDList)
	assert.Equal(t, "Under Article 1, sellers must label food.", got.Answer)
	assert.Equal(t, 1, emb.calls)
	require.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.prompts[0], "[LAW ID: 101]")
	assert.Contains(t, gen.prompts[0], "[LAW ID: 102]")
	assert.NotContains(t, gen.prompts[0], "[LAW ID: 103]")
	assert.False(t, gen.opts[0].JSONResponse)
	assert.Equal(t, int32(2048), gen.opts[0].MaxOutputTokens)
	assert.Equal(t, 3, store.lastK)
}

func TestChatService_NoEvidenceSkipsGeneration(t *testing.T) {
	store := &fakeStore{results: map[int64][]models.RetrievalCandidate{
		0: {candidate(1, 1.2), candidate(2, 1.4)},
	}}
	gen := &fakeGenerator{output: "should not be used"}
	svc, _ := newTestChatService(store, gen)

	got, err := svc.Answer(context.Background(), ChatRequest{Query: "anything"})
	require.NoError(t, err)

	assert.False(t, got.SearchSuccess)
	assert.Equal(t, NoRelevantEvidenceAnswer, got.Answer)
	assert.NotNil(t, got.RelatedLawIDList)
	assert.Empty(t, got.RelatedLawIDList)
	assert.Zero(t, gen.calls)
}

func TestChatService_Failures(t *testing.T) {
	inRange := map[int64][]models.RetrievalCandidate{0: {candidate(1, 0.1)}}

	t.Run("empty query", func(t *testing.T) {
		svc, emb := newTestChatService(&fakeStore{}, &fakeGenerator{})
		_, err := svc.Answer(context.Background(), ChatRequest{Query: "  "})
		assert.ErrorIs(t, err, ErrInvalidQuery)
		assert.Zero(t, emb.calls)
	})

	t.Run("embedding failure", func(t *testing.T) {
		store := &fakeStore{results: inRange}
		gen := &fakeGenerator{output: "x"}
		svc, emb := newTestChatService(store, gen)
		emb.err = errors.New("quota")

		_, err := svc.Answer(context.Background(), ChatRequest{Query: "q"})
		assert.ErrorIs(t, err, ErrEmbeddingFailed)
		assert.Zero(t, store.calls)
		assert.Zero(t, gen.calls)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		store := &fakeStore{results: inRange}
		svc, emb := newTestChatService(store, &fakeGenerator{output: "x"})
		emb.vector = []float32{1, 0, 0}

		_, err := svc.Answer(context.Background(), ChatRequest{Query: "q"})
		assert.ErrorIs(t, err, ErrEmbeddingFailed)
		assert.Zero(t, store.calls)
	})

	t.Run("retrieval failure", func(t *testing.T) {
		store := &fakeStore{errs: map[int64]error{0: errors.New("db down")}}
		gen := &fakeGenerator{output: "x"}
		svc, _ := newTestChatService(store, gen)

		_, err := svc.Answer(context.Background(), ChatRequest{Query: "q"})
		assert.ErrorIs(t, err, ErrRetrievalFailed)
		assert.Zero(t, gen.calls)
	})

	t.Run("generation failure", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("503")}
		svc, _ := newTestChatService(&fakeStore{results: inRange}, gen)

		got, err := svc.Answer(context.Background(), ChatRequest{Query: "q"})
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.Nil(t, got)
	})

	t.Run("blank generation", func(t *testing.T) {
		gen := &fakeGenerator{output: " \n "}
		svc, _ := newTestChatService(&fakeStore{results: inRange}, gen)

		_, err := svc.Answer(context.Background(), ChatRequest{Query: "q"})
		assert.ErrorIs(t, err, ErrGenerationFailed)
	})

	t.Run("missing collaborator", func(t *testing.T) {
		svc := NewChatService(chatPolicy, WithEmbedder(&fakeEmbedder{}))
		_, err := svc.Answer(context.Background(), ChatRequest{Query: "q"})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestChatService_RecordsTranscript(t *testing.T) {
	store := &fakeStore{results: map[int64][]models.RetrievalCandidate{5: {candidate(9, 0.2)}}}
	rec := &fakeRecorder{err: errors.New("disk full")}
	svc, _ := newTestChatService(store, &fakeGenerator{output: "answer"}, WithTranscriptRecorder(rec))

	got, err := svc.Answer(context.Background(), ChatRequest{Query: " q ", JurisdictionID: ptr(5)})
	require.NoError(t, err, "archive failures must not fail the request")
	assert.True(t, got.SearchSuccess)

	require.Len(t, rec.transcripts, 1)
	tr := rec.transcripts[0]
	assert.Equal(t, models.TranscriptModeChat, tr.Mode)
	assert.Equal(t, "q", tr.Query)
	assert.Equal(t, []int64{5}, tr.JurisdictionIDs)
	assert.Equal(t, [][]int64{{9}}, tr.EvidenceLawIDs)
	assert.Equal(t, "answer", tr.RawOutput)
	assert.NotEmpty(t, tr.Prompt)
}

func TestChatService_UsesComposerLanguage(t *testing.T) {
	store := &fakeStore{results: map[int64][]models.RetrievalCandidate{0: {candidate(1, 0.1)}}}
	gen := &fakeGenerator{output: "ok"}
	svc, _ := newTestChatService(store, gen,
		WithPromptComposer(NewPromptComposer("English", "Cannot say.")),
		WithGenerationConfig(config.GenerationConfig{Temperature: 0.2, MaxOutputTokens: 512}),
	)

	_, err := svc.Answer(context.Background(), ChatRequest{Query: "q"})
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], "natural English")
	assert.Contains(t, gen.prompts[0], "Cannot say.")
	assert.Equal(t, GenerationOptions{Temperature: 0.2, MaxOutputTokens: 512}, gen.opts[0])
}
