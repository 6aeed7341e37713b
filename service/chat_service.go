package service

import (
	"context"
	"strings"
	"time"

	"glaw-backend/config"
	"glaw-backend/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ChatService answers a question from the laws of a single jurisdiction
type ChatService struct {
	pipeline
	policy config.ThresholdPolicy
}

// NewChatService creates a new chat service using the given retrieval policy
func NewChatService(policy config.ThresholdPolicy, opts ...PipelineOption) *ChatService {
	return &ChatService{
		pipeline: newPipeline("chat", opts),
		policy:   policy,
	}
}

// ChatRequest represents a single-jurisdiction question.
// A nil JurisdictionID searches the whole corpus.
type ChatRequest struct {
	Query          string
	JurisdictionID *int64
}

// Answer runs embed → retrieve → filter → (generate → parse). Embedding,
// retrieval and generation failures are returned; an empty evidence set is a
// normal result with SearchSuccess=false and the generator is not called.
func (s *ChatService) Answer(ctx context.Context, req ChatRequest) (*models.SynthesisResult, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	ctx, span := tracer.Start(ctx, "chat.answer")
	defer span.End()

	vector, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	evidence, err := s.retrieveEvidence(ctx, vector, req.JurisdictionID, s.policy)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("evidence.status", evidence.Status().String()))

	if evidence.Status() == NoEvidence {
		s.logger.InfoContext(ctx, "no evidence within threshold, skipping generation",
			"jurisdiction", jurisdictionLabel(req.JurisdictionID),
			"max_distance", s.policy.MaxDistance,
		)
		return &models.SynthesisResult{
			Answer:           NoRelevantEvidenceAnswer,
			RelatedLawIDList: []int64{},
			SearchSuccess:    false,
		}, nil
	}

	prompt := s.composer.ComposeChatPrompt(query, BuildContext(evidence))
	transcript := s.newTranscript(query, req.JurisdictionID, evidence)

	raw, err := s.generate(ctx, prompt, false, transcript)
	if err != nil {
		return nil, err
	}

	return &models.SynthesisResult{
		Answer:           ParseChatResponse(raw),
		RelatedLawIDList: evidence.LawIDs(),
		SearchSuccess:    true,
	}, nil
}

func (s *ChatService) newTranscript(query string, jurisdictionID *int64, evidence EvidenceSet) *models.Transcript {
	if s.transcripts == nil {
		return nil
	}
	var jurisdictions []int64
	if jurisdictionID != nil {
		jurisdictions = []int64{*jurisdictionID}
	}
	return &models.Transcript{
		ID:              uuid.New(),
		Mode:            models.TranscriptModeChat,
		Query:           query,
		JurisdictionIDs: jurisdictions,
		EvidenceLawIDs:  [][]int64{evidence.LawIDs()},
		CreatedAt:       time.Now().UTC(),
	}
}
