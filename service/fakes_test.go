package service

import (
	"context"
	"sync"

	"glaw-backend/models"
)

type fakeEmbedder struct {
	mu     sync.Mutex
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	output  string
	err     error
	calls   int
	prompts []string
	opts    []GenerationOptions
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

// fakeStore answers per jurisdiction; the nil key is stored under 0
type fakeStore struct {
	mu      sync.Mutex
	results map[int64][]models.RetrievalCandidate
	errs    map[int64]error
	calls   int
	lastK   int
}

func (f *fakeStore) SearchNearest(ctx context.Context, vector []float32, jurisdictionID *int64, k int) ([]models.RetrievalCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastK = k
	var key int64
	if jurisdictionID != nil {
		key = *jurisdictionID
	}
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.results[key], nil
}

type fakeNamer struct {
	names map[int64]string
	err   error
	calls int
}

func (f *fakeNamer) NamesByID(ctx context.Context, ids []int64) (map[int64]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.names, nil
}

type fakeRecorder struct {
	mu          sync.Mutex
	transcripts []*models.Transcript
	err         error
}

func (f *fakeRecorder) Record(ctx context.Context, t *models.Transcript) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts = append(f.transcripts, t)
	return f.err
}

func candidate(id int64, distance float64) models.RetrievalCandidate {
	return models.RetrievalCandidate{
		Law: models.Law{
			ID:        id,
			Title:     "Act",
			ArticleNo: "Article 1",
			Content:   "content",
		},
		Distance: distance,
	}
}

func ptr(v int64) *int64 {
	return &v
}
