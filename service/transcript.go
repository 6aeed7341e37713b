package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"glaw-backend/models"
	"glaw-backend/storage"

	"github.com/google/uuid"
)

var ErrTranscriptNotFound = errors.New("transcript not found")

// TranscriptArchive stores one JSON document per generator invocation
type TranscriptArchive struct {
	store storage.Storage
}

// NewTranscriptArchive creates an archive on top of the given storage backend
func NewTranscriptArchive(store storage.Storage) *TranscriptArchive {
	return &TranscriptArchive{store: store}
}

// transcriptKey shards by the first two hex digits of the id
func transcriptKey(id uuid.UUID) string {
	s := id.String()
	return fmt.Sprintf("transcripts/%s/%s.json", s[:2], s)
}

// Record writes the transcript under its id
func (a *TranscriptArchive) Record(ctx context.Context, transcript *models.Transcript) error {
	if transcript == nil || transcript.ID == uuid.Nil {
		return errors.New("transcript id is required")
	}
	data, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	if err := a.store.Put(ctx, transcriptKey(transcript.ID), bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to store transcript: %w", err)
	}
	return nil
}

// Load reads a transcript back by id
func (a *TranscriptArchive) Load(ctx context.Context, id uuid.UUID) (*models.Transcript, error) {
	rc, err := a.store.Get(ctx, transcriptKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	defer rc.Close()

	var transcript models.Transcript
	if err := json.NewDecoder(rc).Decode(&transcript); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return &transcript, nil
}
