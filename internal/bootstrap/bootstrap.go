package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/policyatlas/evidence-engine/internal/config"
	"github.com/policyatlas/evidence-engine/internal/core/ports"
	"github.com/policyatlas/evidence-engine/internal/core/usecase"
	"github.com/policyatlas/evidence-engine/internal/infrastructure/embedding/gemini"
	"github.com/policyatlas/evidence-engine/internal/infrastructure/index/snapshot"
	"github.com/policyatlas/evidence-engine/internal/infrastructure/queue/nats"
	"github.com/policyatlas/evidence-engine/internal/infrastructure/repository/postgres"
	"github.com/policyatlas/evidence-engine/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue     *nats.Queue
	Retriever ports.EvidenceRetriever
	Reviews   ports.ReviewService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	reviewRepo := postgres.NewReviewRepository(db)
	if err := reviewRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	pageStore := postgres.NewPageStore(db)

	// A process without its embedding index cannot answer anything, so a
	// load failure here is fatal rather than degraded.
	indexLoader := snapshot.New(cfg.IndexSnapshotPath)
	index, err := indexLoader.Load(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load embedding index: %w", err)
	}
	logger.Info("index_loaded",
		"path", cfg.IndexSnapshotPath,
		"model_id", index.ModelID,
		"dimension", index.Dimension,
		"records", len(index.Records),
	)

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	embedder := gemini.NewWithOptions(cfg.EmbedURL, cfg.EmbedModel, gemini.Options{
		Executor: resilience.NewExecutorWithLogger(resilience.SingleAttemptConfig(), logger),
	})

	retrieveUC := usecase.NewRetrieveUseCase(indexLoader, pageStore, embedder, usecase.EngineParams{
		TopK:            cfg.TopK,
		NeighborRadius:  cfg.NeighborRadius,
		BaseScoreFactor: cfg.BaseScoreFactor,
		ContextBudget:   cfg.ContextBudget,
		MaxBlocks:       cfg.MaxBlocks,
		MinChunks:       cfg.MinChunks,
		OverageFactor:   cfg.OverageFactor,
		OverageChunkMax: cfg.OverageChunkMax,
		SentWindow:      cfg.SentWindow,
		MaxSentChars:    cfg.MaxSentChars,
		PageFallbackMax: cfg.PageFallbackMax,
		Concurrency:     cfg.Concurrency,
	}, logger)
	reviewUC := usecase.NewReviewUseCase(reviewRepo, queue, retrieveUC)

	return &App{
		Config:    cfg,
		Queue:     queue,
		Retriever: retrieveUC,
		Reviews:   reviewUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
