package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"glaw-backend/config"
	"glaw-backend/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidQuery     = errors.New("query must not be empty")
	ErrEmbeddingFailed  = errors.New("failed to generate embedding")
	ErrRetrievalFailed  = errors.New("failed to retrieve laws")
	ErrGenerationFailed = errors.New("failed to generate content")
	ErrNotConfigured    = errors.New("pipeline dependency not set")
)

var tracer = otel.Tracer("glaw-backend/service")

// Embedder turns text into a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenerationOptions are the sampling parameters sent with a prompt
type GenerationOptions struct {
	Temperature     float32
	MaxOutputTokens int32
	JSONResponse    bool // ask the model for a bare JSON object
}

// Generator turns a prompt into text
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

// VectorStore returns the k nearest laws to a vector by L2 distance.
// A nil jurisdictionID searches the whole corpus.
type VectorStore interface {
	SearchNearest(ctx context.Context, vector []float32, jurisdictionID *int64, k int) ([]models.RetrievalCandidate, error)
}

// JurisdictionNamer resolves jurisdiction ids to display names
type JurisdictionNamer interface {
	NamesByID(ctx context.Context, ids []int64) (map[int64]string, error)
}

// TranscriptRecorder persists a record of one generator invocation
type TranscriptRecorder interface {
	Record(ctx context.Context, transcript *models.Transcript) error
}

// pipeline holds the collaborators shared by the chat and compare services
type pipeline struct {
	embedder    Embedder
	generator   Generator
	retriever   *Retriever
	namer       JurisdictionNamer
	composer    *PromptComposer
	generation  config.GenerationConfig
	dimension   int
	transcripts TranscriptRecorder
	logger      *slog.Logger
}

// PipelineOption is a functional option for ChatService and CompareService
type PipelineOption func(*pipeline)

// WithEmbedder sets the embedding client
func WithEmbedder(e Embedder) PipelineOption {
	return func(p *pipeline) {
		p.embedder = e
	}
}

// WithGenerator sets the generation client
func WithGenerator(g Generator) PipelineOption {
	return func(p *pipeline) {
		p.generator = g
	}
}

// WithVectorStore sets the store backing the retriever
func WithVectorStore(store VectorStore) PipelineOption {
	return func(p *pipeline) {
		p.retriever = NewRetriever(store)
	}
}

// WithJurisdictionNamer sets the jurisdiction name lookup
func WithJurisdictionNamer(n JurisdictionNamer) PipelineOption {
	return func(p *pipeline) {
		p.namer = n
	}
}

// WithPromptComposer sets the prompt composer
func WithPromptComposer(c *PromptComposer) PipelineOption {
	return func(p *pipeline) {
		p.composer = c
	}
}

// WithGenerationConfig sets temperature and output token cap
func WithGenerationConfig(cfg config.GenerationConfig) PipelineOption {
	return func(p *pipeline) {
		p.generation = cfg
	}
}

// WithEmbeddingDimension sets the expected embedding dimension; 0 disables the check
func WithEmbeddingDimension(dim int) PipelineOption {
	return func(p *pipeline) {
		p.dimension = dim
	}
}

// WithTranscriptRecorder enables transcript archiving
func WithTranscriptRecorder(r TranscriptRecorder) PipelineOption {
	return func(p *pipeline) {
		p.transcripts = r
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *pipeline) {
		p.logger = l
	}
}

func newPipeline(component string, opts []PipelineOption) pipeline {
	p := pipeline{
		composer: NewPromptComposer("Korean", config.DefaultRefusalPhrase),
		generation: config.GenerationConfig{
			Temperature:     0,
			MaxOutputTokens: 2048,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	p.logger = p.logger.With("component", component)
	return p
}

func (p *pipeline) checkReady() error {
	switch {
	case p.embedder == nil:
		return fmt.Errorf("%w: embedder", ErrNotConfigured)
	case p.generator == nil:
		return fmt.Errorf("%w: generator", ErrNotConfigured)
	case p.retriever == nil:
		return fmt.Errorf("%w: vector store", ErrNotConfigured)
	}
	return nil
}

// embed converts the query into a vector. Any failure is fatal to the request.
func (p *pipeline) embed(ctx context.Context, query string) ([]float32, error) {
	ctx, span := tracer.Start(ctx, "embed")
	defer span.End()

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding failed")
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if p.dimension > 0 && len(vector) != p.dimension {
		err := fmt.Errorf("%w: embedding must be %d dimensions, got %d", ErrEmbeddingFailed, p.dimension, len(vector))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("embedding.dimension", len(vector)))
	return vector, nil
}

// retrieveEvidence runs Retriever then FilterByDistance for one jurisdiction
func (p *pipeline) retrieveEvidence(
	ctx context.Context,
	vector []float32,
	jurisdictionID *int64,
	policy config.ThresholdPolicy,
) (EvidenceSet, error) {
	ctx, span := tracer.Start(ctx, "retrieve", trace.WithAttributes(
		attribute.Int("retrieval.top_k", policy.TopK),
		attribute.Float64("retrieval.max_distance", policy.MaxDistance),
	))
	defer span.End()
	if jurisdictionID != nil {
		span.SetAttributes(attribute.Int64("retrieval.jurisdiction_id", *jurisdictionID))
	}

	candidates, err := p.retriever.Retrieve(ctx, vector, jurisdictionID, policy.TopK)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")
		return EvidenceSet{}, err
	}

	evidence := FilterByDistance(candidates, policy.MaxDistance)
	span.SetAttributes(
		attribute.Int("retrieval.candidates", len(candidates)),
		attribute.Int("retrieval.evidence", evidence.Len()),
	)
	p.logger.DebugContext(ctx, "retrieved evidence",
		"jurisdiction", jurisdictionLabel(jurisdictionID),
		"candidates", len(candidates),
		"evidence", evidence.Len(),
		"max_distance", policy.MaxDistance,
	)
	return evidence, nil
}

// generate invokes the generator and records a transcript when enabled
func (p *pipeline) generate(ctx context.Context, prompt string, jsonResponse bool, transcript *models.Transcript) (string, error) {
	ctx, span := tracer.Start(ctx, "generate", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.Bool("generation.json", jsonResponse),
	))
	defer span.End()

	raw, err := p.generator.Generate(ctx, prompt, GenerationOptions{
		Temperature:     p.generation.Temperature,
		MaxOutputTokens: p.generation.MaxOutputTokens,
		JSONResponse:    jsonResponse,
	})
	if err == nil && strings.TrimSpace(raw) == "" {
		err = errors.New("generator returned empty content")
	}

	if transcript != nil {
		transcript.Prompt = prompt
		transcript.RawOutput = raw
		if err != nil {
			transcript.GenerationError = err.Error()
		}
		p.record(ctx, transcript)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return raw, nil
}

// jurisdictionLabel renders an optional jurisdiction id for logs
func jurisdictionLabel(id *int64) string {
	if id == nil {
		return "all"
	}
	return strconv.FormatInt(*id, 10)
}

func (p *pipeline) record(ctx context.Context, transcript *models.Transcript) {
	if p.transcripts == nil {
		return
	}
	if err := p.transcripts.Record(ctx, transcript); err != nil {
		p.logger.WarnContext(ctx, "failed to archive transcript", "transcript_id", transcript.ID, "error", err)
	}
}
