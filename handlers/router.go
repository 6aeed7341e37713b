package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"glaw-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// Pinger reports database liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// JurisdictionLister lists the jurisdictions in the corpus
type JurisdictionLister interface {
	List(ctx context.Context) ([]models.Jurisdiction, error)
}

// RouterConfig holds everything the router serves. Nil Transcripts disables
// the transcript endpoint; nil Jurisdictions disables the listing endpoint.
type RouterConfig struct {
	Laws          *LawHandler
	Transcripts   *TranscriptHandler
	Jurisdictions JurisdictionLister
	DB            Pinger
	Logger        *slog.Logger
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if cfg.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.DB.Ping(ctx); err != nil {
				logger.WarnContext(c.Request.Context(), "health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/chat", cfg.Laws.Chat)
		api.POST("/compare", cfg.Laws.Compare)

		if cfg.Jurisdictions != nil {
			api.GET("/jurisdictions", listJurisdictions(cfg.Jurisdictions, logger))
		}
		if cfg.Transcripts != nil {
			api.GET("/transcripts/:id", cfg.Transcripts.GetTranscript)
		}
	}

	return r
}

func listJurisdictions(lister JurisdictionLister, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		jurisdictions, err := lister.List(c.Request.Context())
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "failed to list jurisdictions", "error", err)
			respondError(c, http.StatusInternalServerError, CodeInternal, messageInternal)
			return
		}
		respondOK(c, "", jurisdictions)
	}
}

// requestID tags each request with X-Request-ID, generating one when absent
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(requestIDKey),
		)
	}
}
