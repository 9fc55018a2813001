// go_careers: keyword extraction and job recommendation MCP server.
//
// Extracts TextRank keywords from job post descriptions and student
// biographies, keeps the stored keyword sets in sync with the text, and
// recommends job posts to students by keyword-set similarity.
// Exposes tools: keywords_extract, keywords_sync, keywords_get,
// keywords_delete, keywords_reindex, jobs_recommend.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_careers/internal/careerserver"
	"github.com/anatolykoptev/go_careers/internal/engine"
	"github.com/anatolykoptev/go_careers/internal/engine/careers"
	"github.com/anatolykoptev/go_careers/internal/engine/keywords"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	// Environment variables win over .env; a missing file is fine.
	_ = godotenv.Load()
	mcpPort := env.Str("MCP_PORT", "8892")

	c := initEngine()

	kwCfg, err := keywords.LoadConfig(c.KeywordsConfigPath)
	if err != nil {
		slog.Error("keywords config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	backend, err := careers.OpenBackend(ctx, c.StoreDriver, c.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("keyword store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer backend.Close()

	students, err := backend.Keywords(careers.OwnerStudent)
	if err != nil {
		slog.Error("student keyword store", slog.Any("error", err))
		os.Exit(1)
	}

	extractor := careers.NewCachedExtractor(keywords.NewExtractor(kwCfg, nil))
	syncer := careers.NewSynchronizer(extractor)
	deps := careerserver.Deps{
		Extractor:   extractor,
		Sync:        syncer,
		Stores:      backend,
		Recommender: careers.NewRecommender(students, backend, c.RecommendLimit),
		Reindexer:   careers.NewReindexer(syncer, backend, c.ReindexWorkers, c.ReindexRate),
	}

	slog.Info("starting go_careers",
		slog.String("port", mcpPort),
		slog.String("store", c.StoreDriver),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_careers",
		Version: version,
	}, nil)

	n := careerserver.RegisterTools(server, deps)
	slog.Info("tools registered", slog.Int("count", n))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_careers",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() engine.Config {
	c := engine.Config{
		StoreDriver:          env.Str("STORE_DRIVER", "sqlite"),
		DatabaseURL:          env.Str("DATABASE_URL", ""),
		KeywordsConfigPath:   env.Str("KEYWORDS_CONFIG", ""),
		CacheTTL:             env.Duration("CACHE_TTL", time.Hour),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 2000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		ReindexWorkers:       env.Int("REINDEX_WORKERS", 4),
		ReindexRate:          env.Float("REINDEX_RATE", 50),
		RecommendLimit:       env.Int("RECOMMEND_LIMIT", careers.DefaultRecommendLimit),
	}
	engine.InitCache(env.Str("REDIS_URL", ""), c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return c
}
