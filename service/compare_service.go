package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"glaw-backend/config"
	"glaw-backend/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// CompareService compares the laws of two jurisdictions on one question
type CompareService struct {
	pipeline
	policy config.ThresholdPolicy
}

// NewCompareService creates a new compare service using the given retrieval policy
func NewCompareService(policy config.ThresholdPolicy, opts ...PipelineOption) *CompareService {
	return &CompareService{
		pipeline: newPipeline("compare", opts),
		policy:   policy,
	}
}

// CompareRequest represents a two-jurisdiction comparison question
type CompareRequest struct {
	Query           string
	JurisdictionID1 int64
	JurisdictionID2 int64
}

// CompareResult carries the comparison and a message for the response envelope.
// Message is empty unless the sufficiency gate rejected the request.
type CompareResult struct {
	Comparison *models.ComparisonResult
	Message    string
}

// Compare embeds the query once, retrieves both jurisdictions concurrently and
// only calls the generator when both sides have evidence. Generation and parse
// failures degrade to FailedAnalysis instead of failing the request.
func (s *CompareService) Compare(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	ctx, span := tracer.Start(ctx, "compare.compare")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("compare.jurisdiction_id_1", req.JurisdictionID1),
		attribute.Int64("compare.jurisdiction_id_2", req.JurisdictionID2),
	)

	vector, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	evidence1, evidence2, err := s.retrieveBothSides(ctx, vector, req.JurisdictionID1, req.JurisdictionID2)
	if err != nil {
		return nil, err
	}

	if evidence1.Status() == NoEvidence || evidence2.Status() == NoEvidence {
		span.SetAttributes(attribute.Bool("compare.sufficient", false))
		return s.insufficient(ctx, req, evidence1, evidence2), nil
	}
	span.SetAttributes(attribute.Bool("compare.sufficient", true))

	prompt := s.composer.ComposeComparePrompt(query, BuildContext(evidence1), BuildContext(evidence2))
	transcript := s.newTranscript(query, req, evidence1, evidence2)

	analysis := FailedAnalysis()
	raw, err := s.generate(ctx, prompt, true, transcript)
	if err != nil {
		s.logger.ErrorContext(ctx, "comparison generation failed, returning failure marker", "error", err)
	} else {
		parsed, perr := ParseComparison(raw)
		if perr != nil {
			s.logger.WarnContext(ctx, "comparison output rejected, returning failure marker", "error", perr)
		}
		analysis = parsed
	}

	return &CompareResult{
		Comparison: &models.ComparisonResult{
			Country1Result: models.CountryResult{
				RelatedLawIDs: evidence1.LawIDs(),
				Summary:       analysis.Summary1,
			},
			Country2Result: models.CountryResult{
				RelatedLawIDs: evidence2.LawIDs(),
				Summary:       analysis.Summary2,
			},
			CompareSummary: models.CompareAnalysis{
				Common: analysis.Common,
				Diff:   analysis.Diff,
			},
			SearchSuccess: true,
		},
	}, nil
}

// retrieveBothSides runs the two jurisdiction lookups concurrently. Both are
// always awaited; a failure on one side does not cancel the other.
func (s *CompareService) retrieveBothSides(
	ctx context.Context,
	vector []float32,
	jurisdictionID1, jurisdictionID2 int64,
) (EvidenceSet, EvidenceSet, error) {
	var evidence1, evidence2 EvidenceSet
	var g errgroup.Group
	g.Go(func() error {
		var err error
		evidence1, err = s.retrieveEvidence(ctx, vector, &jurisdictionID1, s.policy)
		return err
	})
	g.Go(func() error {
		var err error
		evidence2, err = s.retrieveEvidence(ctx, vector, &jurisdictionID2, s.policy)
		return err
	})
	if err := g.Wait(); err != nil {
		return EvidenceSet{}, EvidenceSet{}, err
	}
	return evidence1, evidence2, nil
}

// insufficient builds the short-circuit result naming the jurisdictions that
// had no evidence within the threshold
func (s *CompareService) insufficient(
	ctx context.Context,
	req CompareRequest,
	evidence1, evidence2 EvidenceSet,
) *CompareResult {
	var missing []int64
	if evidence1.Status() == NoEvidence {
		missing = append(missing, req.JurisdictionID1)
	}
	if evidence2.Status() == NoEvidence && (len(missing) == 0 || missing[0] != req.JurisdictionID2) {
		missing = append(missing, req.JurisdictionID2)
	}

	names := s.jurisdictionNames(ctx, missing)
	message := MissingEvidenceMessage(names)

	s.logger.InfoContext(ctx, "comparison skipped, insufficient evidence",
		"missing", strings.Join(names, ", "),
		"evidence_1", evidence1.Len(),
		"evidence_2", evidence2.Len(),
	)

	return &CompareResult{
		Comparison: &models.ComparisonResult{
			Country1Result: models.CountryResult{RelatedLawIDs: []int64{}, Summary: NoEvidenceSummary},
			Country2Result: models.CountryResult{RelatedLawIDs: []int64{}, Summary: NoEvidenceSummary},
			CompareSummary: models.CompareAnalysis{Common: message, Diff: ""},
			SearchSuccess:  false,
		},
		Message: message,
	}
}

// jurisdictionNames resolves ids to display names in the given order, falling
// back to the numeric id when the lookup fails or has no entry
func (s *CompareService) jurisdictionNames(ctx context.Context, ids []int64) []string {
	var lookup map[int64]string
	if s.namer != nil {
		var err error
		lookup, err = s.namer.NamesByID(ctx, ids)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to resolve jurisdiction names", "error", err)
		}
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := lookup[id]; ok && name != "" {
			names = append(names, name)
			continue
		}
		names = append(names, strconv.FormatInt(id, 10))
	}
	return names
}

// MissingEvidenceMessage explains which jurisdictions had no usable evidence
func MissingEvidenceMessage(names []string) string {
	return fmt.Sprintf("No relevant legal data could be found for %s.", strings.Join(names, ", "))
}

func (s *CompareService) newTranscript(query string, req CompareRequest, evidence1, evidence2 EvidenceSet) *models.Transcript {
	if s.transcripts == nil {
		return nil
	}
	return &models.Transcript{
		ID:              uuid.New(),
		Mode:            models.TranscriptModeCompare,
		Query:           query,
		JurisdictionIDs: []int64{req.JurisdictionID1, req.JurisdictionID2},
		EvidenceLawIDs:  [][]int64{evidence1.LawIDs(), evidence2.LawIDs()},
		CreatedAt:       time.Now().UTC(),
	}
}
