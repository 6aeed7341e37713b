package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder embeds retrieval queries with an OpenAI embedding model
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	backoff    time.Duration
}

// NewOpenAIEmbedder creates an embedder sharing the given client. dimensions
// is forwarded to text-embedding-3 models so vectors match the corpus; 0 uses
// the model default.
func NewOpenAIEmbedder(client *openai.Client, model string, dimensions int) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:     client,
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
		backoff:    initialBackoff,
	}
}

// Embed returns the L2-normalized query embedding
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	}
	if strings.HasPrefix(string(e.model), "text-embedding-3") {
		req.Dimensions = e.dimensions
	}

	var lastErr error
	backoff := e.backoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}

		resp, err := e.client.CreateEmbeddings(ctx, req)
		if err != nil {
			if !retryableOpenAIError(err) {
				return nil, fmt.Errorf("embedding request rejected: %w", err)
			}
			lastErr = err
			continue
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			lastErr = errors.New("embedding response has no values")
			continue
		}
		return normalize(resp.Data[0].Embedding), nil
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", maxRetries, lastErr)
}

// OpenAIGenerator generates text with an OpenAI chat model
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator sharing the given client
func NewOpenAIGenerator(client *openai.Client, model string) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, model: model}
}

// Generate sends the prompt as a single user message
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	temperature := opts.Temperature
	if temperature == 0 {
		// the client drops a zero temperature (omitempty), which the API reads as 1
		temperature = math.SmallestNonzeroFloat32
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:         temperature,
		MaxCompletionTokens: int(opts.MaxOutputTokens),
	}
	if opts.JSONResponse {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("openai returned empty content (finish reason: %s)", resp.Choices[0].FinishReason)
	}
	return content, nil
}

func retryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return false
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return false
		}
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
