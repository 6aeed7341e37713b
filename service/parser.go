package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Fixed markers. AnalysisFailedMarker means the generator malfunctioned and must
// stay distinct from the refusal phrase, which means the evidence was insufficient.
const (
	NoRelevantEvidenceAnswer = "No relevant legal provisions were found for this question."
	NoEvidenceSummary        = "No data"
	AnalysisFailedMarker     = "Analysis failed"
)

var ErrMalformedOutput = errors.New("malformed generation output")

// ComparisonAnalysis is the validated structured output of a comparison prompt
type ComparisonAnalysis struct {
	Summary1 string
	Summary2 string
	Common   string
	Diff     string
}

// FailedAnalysis returns the analysis used whenever generation or parsing fails
func FailedAnalysis() ComparisonAnalysis {
	return ComparisonAnalysis{
		Summary1: AnalysisFailedMarker,
		Summary2: AnalysisFailedMarker,
		Common:   AnalysisFailedMarker,
		Diff:     AnalysisFailedMarker,
	}
}

type comparisonPayload struct {
	Summary1 *string `json:"summary_1"`
	Summary2 *string `json:"summary_2"`
	Common   *string `json:"common"`
	Diff     *string `json:"diff"`
}

// ParseChatResponse returns the generated text as the answer
func ParseChatResponse(raw string) string {
	return strings.TrimSpace(raw)
}

// ParseComparison validates raw generator output against the comparison schema:
// exactly one JSON object whose four string fields are all present and non-blank.
// On any failure it returns FailedAnalysis together with the reason.
func ParseComparison(raw string) (ComparisonAnalysis, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return FailedAnalysis(), fmt.Errorf("%w: empty output", ErrMalformedOutput)
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	var payload comparisonPayload
	if err := dec.Decode(&payload); err != nil {
		return FailedAnalysis(), fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return FailedAnalysis(), fmt.Errorf("%w: trailing data after object", ErrMalformedOutput)
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"summary_1", payload.Summary1},
		{"summary_2", payload.Summary2},
		{"common", payload.Common},
		{"diff", payload.Diff},
	}
	var missing []string
	for _, f := range fields {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return FailedAnalysis(), fmt.Errorf("%w: missing fields %s", ErrMalformedOutput, strings.Join(missing, ", "))
	}

	return ComparisonAnalysis{
		Summary1: strings.TrimSpace(*payload.Summary1),
		Summary2: strings.TrimSpace(*payload.Summary2),
		Common:   strings.TrimSpace(*payload.Common),
		Diff:     strings.TrimSpace(*payload.Diff),
	}, nil
}
