package models

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptMode identifies which pipeline produced a transcript
type TranscriptMode string

const (
	TranscriptModeChat    TranscriptMode = "chat"
	TranscriptModeCompare TranscriptMode = "compare"
)

// Transcript records one generator invocation for later inspection
type Transcript struct {
	ID              uuid.UUID      `json:"id"`
	Mode            TranscriptMode `json:"mode"`
	Query           string         `json:"query"`
	JurisdictionIDs []int64        `json:"jurisdiction_ids"`
	EvidenceLawIDs  [][]int64      `json:"evidence_law_ids"` // one slice per side
	Prompt          string         `json:"prompt"`
	RawOutput       string         `json:"raw_output"`
	GenerationError string         `json:"generation_error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
