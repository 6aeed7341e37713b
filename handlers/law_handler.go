package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"glaw-backend/models"
	"glaw-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatAnswerer answers single-jurisdiction questions
type ChatAnswerer interface {
	Answer(ctx context.Context, req service.ChatRequest) (*models.SynthesisResult, error)
}

// Comparer compares two jurisdictions
type Comparer interface {
	Compare(ctx context.Context, req service.CompareRequest) (*service.CompareResult, error)
}

// LawHandler handles the chat and compare endpoints
type LawHandler struct {
	chat    ChatAnswerer
	compare Comparer
	logger  *slog.Logger
}

// NewLawHandler creates a new law handler
func NewLawHandler(chat ChatAnswerer, compare Comparer, logger *slog.Logger) *LawHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LawHandler{
		chat:    chat,
		compare: compare,
		logger:  logger.With("component", "law_handler"),
	}
}

// ChatRequest represents the request body for a chat question
type ChatRequest struct {
	Query          string `json:"query" binding:"required"`
	JurisdictionID *int64 `json:"jurisdiction_id" binding:"omitempty,gt=0"`
}

// CompareRequest represents the request body for a comparison
type CompareRequest struct {
	Query           string `json:"query" binding:"required"`
	JurisdictionID1 int64  `json:"jurisdiction_id_1" binding:"required,gt=0"`
	JurisdictionID2 int64  `json:"jurisdiction_id_2" binding:"required,gt=0"`
}

// Chat handles POST /api/v1/chat
func (h *LawHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Invalid request body: query is required")
		return
	}

	result, err := h.chat.Answer(c.Request.Context(), service.ChatRequest{
		Query:          req.Query,
		JurisdictionID: req.JurisdictionID,
	})
	if err != nil {
		h.fail(c, "chat", err)
		return
	}

	respondOK(c, "", result)
}

// Compare handles POST /api/v1/compare
func (h *LawHandler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest,
			"Invalid request body: query, jurisdiction_id_1 and jurisdiction_id_2 are required")
		return
	}

	result, err := h.compare.Compare(c.Request.Context(), service.CompareRequest{
		Query:           req.Query,
		JurisdictionID1: req.JurisdictionID1,
		JurisdictionID2: req.JurisdictionID2,
	})
	if err != nil {
		h.fail(c, "compare", err)
		return
	}

	respondOK(c, result.Message, result.Comparison)
}

// fail maps a pipeline error to an envelope. Details stay in the log.
func (h *LawHandler) fail(c *gin.Context, operation string, err error) {
	if errors.Is(err, service.ErrInvalidQuery) {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Query must not be empty")
		return
	}

	var stage string
	switch {
	case errors.Is(err, service.ErrEmbeddingFailed):
		stage = "embedding"
	case errors.Is(err, service.ErrRetrievalFailed):
		stage = "retrieval"
	case errors.Is(err, service.ErrGenerationFailed):
		stage = "generation"
	default:
		stage = "unknown"
	}
	h.logger.ErrorContext(c.Request.Context(), "request failed",
		"operation", operation,
		"stage", stage,
		"request_id", c.GetString(requestIDKey),
		"error", err,
	)
	respondError(c, http.StatusInternalServerError, CodeInternal, messageInternal)
}
