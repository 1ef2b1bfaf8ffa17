package cli

import (
	"context"
	"fmt"
	"log"

	openaisdk "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/finsolve/deskagent/internal/config"
	"github.com/finsolve/deskagent/internal/database"
	"github.com/finsolve/deskagent/internal/domain"
	"github.com/finsolve/deskagent/internal/loader"
	"github.com/finsolve/deskagent/internal/openai"
	"github.com/finsolve/deskagent/internal/repository"
	"github.com/finsolve/deskagent/internal/service"
)

// IndexCmd returns the index command
func IndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [domain...]",
		Short: "Build knowledge indices",
		Long: `Chunk, embed, and activate the vector and keyword indices for the given
knowledge domains. With no arguments all domains are built. Queries keep
serving the previous index until the new one is activated.

Domains: engineering, finance_summary, finance_quarterly, general, hr, marketing`,
		RunE: runIndex,
	}

	cmd.Flags().Bool("enqueue", false, "Stage only and let the background worker embed")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")

	return cmd
}

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [domain...]",
		Short: "Load and stage source documents",
		Long: `Load source documents from DATA_DIR, split them into overlapping chunks,
stage them as a new index generation, and enqueue index-build jobs for the
background worker. Equivalent to "index --enqueue".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, true)
		},
	}

	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	enqueue, _ := cmd.Flags().GetBool("enqueue")
	return runBuild(cmd, args, enqueue)
}

func runBuild(cmd *cobra.Command, args []string, enqueue bool) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("DESKAGENT_OPENAI_API_KEY is required to build indices")
	}

	keys, err := resolveDomains(args)
	if err != nil {
		return err
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: openaisdk.EmbeddingModel(cfg.EmbeddingModel),
	})
	catalog := loader.NewCatalog(cfg.DataDir, loader.SplitConfig{
		ChunkSize: cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
	})
	indexer := service.NewIndexerService(
		repository.NewChunkRepository(pool),
		repository.NewIndexJobRepository(pool),
		catalog,
		aiClient,
	)

	for _, key := range keys {
		if enqueue {
			generation, err := indexer.StageAndEnqueue(ctx, key)
			if err != nil {
				return fmt.Errorf("failed to stage %s: %w", key, err)
			}
			log.Printf("staged %s generation %d, background worker will embed it", key, generation)
			continue
		}

		if err := indexer.Build(ctx, key); err != nil {
			return fmt.Errorf("failed to build %s: %w", key, err)
		}
		log.Printf("built index for %s", key)
	}

	return nil
}

func resolveDomains(args []string) ([]domain.DomainKey, error) {
	if len(args) == 0 {
		return domain.DomainKeys, nil
	}

	keys := make([]domain.DomainKey, 0, len(args))
	for _, arg := range args {
		key, ok := domain.ParseDomainKey(arg)
		if !ok {
			return nil, fmt.Errorf("unknown domain %q", arg)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
