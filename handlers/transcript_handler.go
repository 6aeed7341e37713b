package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"glaw-backend/models"
	"glaw-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TranscriptLoader reads archived generator transcripts
type TranscriptLoader interface {
	Load(ctx context.Context, id uuid.UUID) (*models.Transcript, error)
}

// TranscriptHandler handles HTTP requests for archived transcripts
type TranscriptHandler struct {
	transcripts TranscriptLoader
	logger      *slog.Logger
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(transcripts TranscriptLoader, logger *slog.Logger) *TranscriptHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranscriptHandler{
		transcripts: transcripts,
		logger:      logger.With("component", "transcript_handler"),
	}
}

// GetTranscript handles GET /api/v1/transcripts/:id
func (h *TranscriptHandler) GetTranscript(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Invalid transcript ID format")
		return
	}

	transcript, err := h.transcripts.Load(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTranscriptNotFound) {
			respondError(c, http.StatusNotFound, CodeNotFound, "Transcript not found")
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "failed to load transcript", "transcript_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, CodeInternal, messageInternal)
		return
	}

	respondOK(c, "", transcript)
}
