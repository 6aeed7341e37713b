package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glaw-backend/config"
	"glaw-backend/handlers"
	"glaw-backend/observability"
	"glaw-backend/repository"
	"glaw-backend/service"
	"glaw-backend/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize tracing
	telemetry, err := observability.Init(ctx, observability.Config{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Insecure:     cfg.OTLPInsecure,
		SampleRate:   cfg.TraceSampleRate,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Initialize database connections
	db, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	log.Println("Postgres connection established with pgvector support")

	lawRepo := repository.NewLawRepository(db, cfg.EmbeddingDimension)
	jurisdictionRepo := repository.NewJurisdictionRepository(db)

	// Initialize model clients, shared by both pipelines
	providers, err := service.NewProviders(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize model clients:", err)
	}
	log.Printf("Model clients initialized (provider=%s, embedding=%s, generation=%s)",
		cfg.LLMProvider, cfg.EmbeddingModel, cfg.GenerationModel)

	opts := []service.PipelineOption{
		service.WithEmbedder(providers.Embedder),
		service.WithGenerator(providers.Generator),
		service.WithVectorStore(lawRepo),
		service.WithJurisdictionNamer(jurisdictionRepo),
		service.WithPromptComposer(service.NewPromptComposer(cfg.OutputLanguage, cfg.RefusalPhrase)),
		service.WithGenerationConfig(cfg.Generation),
		service.WithEmbeddingDimension(cfg.EmbeddingDimension),
		service.WithLogger(logger),
	}

	// Initialize transcript archive
	var transcriptHandler *handlers.TranscriptHandler
	if cfg.TranscriptsEnabled {
		store, err := storage.NewStorage(ctx, storage.StorageConfig{
			Type:         storage.StorageType(cfg.StorageType),
			LocalPath:    cfg.StorageLocalPath,
			S3Bucket:     cfg.S3Bucket,
			S3Region:     cfg.S3Region,
			AWSAccessKey: cfg.AWSAccessKey,
			AWSSecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		archive := service.NewTranscriptArchive(store)
		opts = append(opts, service.WithTranscriptRecorder(archive))
		transcriptHandler = handlers.NewTranscriptHandler(archive, logger)
		log.Printf("Transcript archive enabled (%s)", cfg.StorageType)
	}

	chatService := service.NewChatService(cfg.Chat, opts...)
	compareService := service.NewCompareService(cfg.Compare, opts...)

	router := handlers.NewRouter(handlers.RouterConfig{
		Laws:          handlers.NewLawHandler(chatService, compareService, logger),
		Transcripts:   transcriptHandler,
		Jurisdictions: jurisdictionRepo,
		DB:            db,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
	if err := providers.Close(); err != nil {
		log.Printf("Warning: failed to close model client: %v", err)
	}
	db.Close()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: %v", err)
	}
	log.Println("Server stopped")
}

func logLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		log.Printf("Warning: invalid LOG_LEVEL=%q, using INFO", level)
		return slog.LevelInfo
	}
	return l
}
