package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	openaisdk "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/finsolve/deskagent/internal/api/handlers"
	"github.com/finsolve/deskagent/internal/config"
	"github.com/finsolve/deskagent/internal/database"
	"github.com/finsolve/deskagent/internal/jobs"
	"github.com/finsolve/deskagent/internal/loader"
	"github.com/finsolve/deskagent/internal/openai"
	"github.com/finsolve/deskagent/internal/repository"
	"github.com/finsolve/deskagent/internal/rerank"
	"github.com/finsolve/deskagent/internal/server"
	"github.com/finsolve/deskagent/internal/service"
	"github.com/finsolve/deskagent/internal/storage"
	"github.com/finsolve/deskagent/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the deskagent API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("DESKAGENT_OPENAI_API_KEY is required to serve requests")
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunkRepo := repository.NewChunkRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	indexJobRepo := repository.NewIndexJobRepository(pool)
	askLogRepo := repository.NewAskLogRepository(pool)

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: openaisdk.EmbeddingModel(cfg.EmbeddingModel),
	})

	var reranker service.Reranker = service.PassthroughReranker{}
	if cfg.HasCohere() {
		cohereClient, err := rerank.NewClient(rerank.Config{
			APIKey: cfg.CohereAPIKey,
			Model:  cfg.RerankModel,
		})
		if err != nil {
			return fmt.Errorf("failed to create rerank client: %w", err)
		}
		reranker = &CohereRerankAdapter{client: cohereClient}
		log.Println("cohere reranker enabled")
	} else {
		log.Println("no Cohere API key configured, serving fused results without reranking")
	}

	var archive service.AudioArchive
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archive = s3Client
	}

	catalog := loader.NewCatalog(cfg.DataDir, loader.SplitConfig{
		ChunkSize: cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
	})
	indexer := service.NewIndexerService(chunkRepo, indexJobRepo, catalog, aiClient)
	indexProcessor := jobs.NewIndexWorker(indexJobRepo, indexer)
	indexWorker := jobs.NewWorker(indexProcessor, 10*time.Second)
	go indexWorker.Start(ctx)
	log.Println("index worker started")

	retriever := service.NewHybridRetriever(chunkRepo, aiClient, reranker, service.RetrieverConfig{
		K:             cfg.RetrieveK,
		VectorWeight:  cfg.VectorWeight,
		KeywordWeight: cfg.KeywordWeight,
		RerankTopN:    cfg.RerankTopN,
	})
	router := service.NewRouterService(aiClient, cfg.RouterModel)
	memory := service.NewMemoryService(conversationRepo, aiClient)
	speaker := openai.NewSpeaker(aiClient, openaisdk.SpeechModel(cfg.SpeechModel), openaisdk.SpeechVoice(cfg.SpeechVoice))
	orchestrator := service.NewOrchestrator(router, retriever, aiClient, memory, speaker, archive, askLogRepo, cfg.AnswerModel)

	httpRouter := server.NewRouter(server.RouterConfig{
		AskHandler:    handlers.NewAskHandler(orchestrator),
		MemoryHandler: handlers.NewMemoryHandler(memory),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpRouter,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	indexWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// CohereRerankAdapter bridges the Cohere client to the retrieval pipeline.
type CohereRerankAdapter struct {
	client *rerank.Client
}

func (a *CohereRerankAdapter) Rerank(ctx context.Context, query string, documents []string, topN int) ([]service.RerankResult, error) {
	results, err := a.client.Rerank(ctx, query, documents, topN)
	if err != nil {
		return nil, err
	}

	ranked := make([]service.RerankResult, len(results))
	for i, res := range results {
		ranked[i] = service.RerankResult{Index: res.Index, Score: res.RelevanceScore}
	}
	return ranked, nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql connection
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
