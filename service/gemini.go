package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	maxRetries     = 3
	initialBackoff = time.Second
)

// NewGeminiClient creates the process-wide Gemini client. Callers own Close.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// GeminiEmbedder embeds retrieval queries with a Gemini embedding model
type GeminiEmbedder struct {
	model   *genai.EmbeddingModel
	backoff time.Duration
}

// NewGeminiEmbedder creates an embedder sharing the given client
func NewGeminiEmbedder(client *genai.Client, modelName string) *GeminiEmbedder {
	em := client.EmbeddingModel(modelName)
	em.TaskType = genai.TaskTypeRetrievalQuery
	return &GeminiEmbedder{model: em, backoff: initialBackoff}
}

// Embed returns the L2-normalized query embedding, retrying transient errors
// with exponential backoff
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	backoff := e.backoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}

		res, err := e.model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			if !retryableGoogleError(err) {
				return nil, fmt.Errorf("embedding request rejected: %w", err)
			}
			lastErr = err
			continue
		}
		if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
			lastErr = errors.New("embedding response has no values")
			continue
		}
		return normalize(res.Embedding.Values), nil
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", maxRetries, lastErr)
}

// GeminiGenerator generates text with a Gemini model
type GeminiGenerator struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

// NewGeminiGenerator creates a generator sharing the given client
func NewGeminiGenerator(client *genai.Client, modelName string) *GeminiGenerator {
	return &GeminiGenerator{
		client:    client,
		modelName: modelName,
		logger:    slog.Default().With("component", "gemini"),
	}
}

// Generate sends the prompt once; the pipelines decide how failures are handled
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	// GenerativeModel is a lightweight handle; the shared client holds the connection
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(opts.Temperature)
	model.SetMaxOutputTokens(opts.MaxOutputTokens)
	if opts.JSONResponse {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
		g.logger.WarnContext(ctx, "candidate finished early", "finish_reason", candidate.FinishReason.String())
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("gemini candidate has no content (finish reason: %s)", candidate.FinishReason)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return "", errors.New("gemini returned empty content")
	}
	return text.String(), nil
}

// retryableGoogleError reports whether a Google API error is worth retrying.
// Bad requests and auth failures are not.
func retryableGoogleError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return false
		}
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// normalize scales v to unit length in place
func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] = float32(float64(v[i]) / norm)
		}
	}
	return v
}
