package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	rediscache "github.com/corpuslabs/corpusd/internal/adapters/driven/cache/redis"
	"github.com/corpuslabs/corpusd/internal/adapters/driven/provider"
	"github.com/corpuslabs/corpusd/internal/adapters/driven/storage/postgres"
	"github.com/corpuslabs/corpusd/internal/chunker"
	"github.com/corpuslabs/corpusd/internal/config"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/core/services"
	"github.com/corpuslabs/corpusd/internal/extractors"
	"github.com/corpuslabs/corpusd/internal/extractors/webcrawl"
	"github.com/corpuslabs/corpusd/internal/logger"
)

// app holds the wired object graph shared by the serve and mcp
// commands.
type app struct {
	cfg       *config.Config
	store     *postgres.Store
	cache     *rediscache.Cache
	providers *provider.Registry

	projects  *services.ProjectService
	documents *services.DocumentService
	ingestion *services.IngestionService
	retrieval *services.RetrievalService

	users driven.UserStore
}

// newApp connects the backends and builds the services.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := postgres.NewStore(ctx, cfg.Postgres.DSN(), cfg.LLM.EmbeddingDimensions)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	var cache *rediscache.Cache
	if cfg.RAG.CacheEnabled {
		cache = rediscache.New(rediscache.Config{
			Addr: cfg.Redis.Addr(),
			DB:   cfg.Redis.DB,
		})
	}

	providers := provider.NewRegistry(cfg.LLM)
	embedder, err := providers.Get(cfg.LLM.EmbeddingProvider)
	if err != nil {
		store.Close()
		return nil, err
	}
	completer, err := providers.Get(cfg.LLM.Provider)
	if err != nil {
		store.Close()
		return nil, err
	}

	fetcher := webcrawl.New(
		webcrawl.WithUserAgent(cfg.Crawler.UserAgent),
		webcrawl.WithTimeout(cfg.Crawler.Timeout),
		webcrawl.WithRespectRobots(cfg.Crawler.RespectRobots),
		webcrawl.WithRequestsPerSecond(cfg.Crawler.RequestsPerSec),
	)

	chk := chunker.New(
		chunker.WithChunkSize(cfg.Ingestion.ChunkSizeChars),
		chunker.WithOverlap(cfg.Ingestion.ChunkOverlapChars),
		chunker.WithPreserveSentences(cfg.Ingestion.PreserveSentences),
	)

	var cacheDep driven.Cache
	if cache != nil {
		cacheDep = cache
	}

	a := &app{
		cfg:       cfg,
		store:     store,
		cache:     cache,
		providers: providers,
		projects:  services.NewProjectService(store.ProjectStore()),
		documents: services.NewDocumentService(store.ProjectStore(), store.DocumentStore()),
		ingestion: services.NewIngestionService(
			store.ProjectStore(), store.DocumentStore(), store.ChunkStore(),
			extractors.NewRegistry(), fetcher, embedder, chk, cfg.LLM.EmbedConcurrency),
		retrieval: services.NewRetrievalService(
			store.ProjectStore(), store.ChunkStore(), embedder, completer, cacheDep, cfg.RAG),
		users: store.UserStore(),
	}
	return a, nil
}

// close releases the backends in reverse wiring order.
func (a *app) close() {
	if err := a.providers.CloseAll(); err != nil {
		logger.Warn("closing providers", zap.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Warn("closing cache", zap.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("closing store", zap.Error(err))
	}
}
