package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/intentd/internal/classifier"
	"github.com/fyrsmithlabs/intentd/internal/config"
	"github.com/fyrsmithlabs/intentd/internal/dataset"
	"github.com/fyrsmithlabs/intentd/internal/embeddings"
	"github.com/fyrsmithlabs/intentd/internal/fusion"
	"github.com/fyrsmithlabs/intentd/internal/logging"
	"github.com/fyrsmithlabs/intentd/internal/rules"
	"github.com/fyrsmithlabs/intentd/internal/vectorindex"
)

// app holds the wired components every subcommand needs.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider embeddings.Provider
	index    vectorindex.Index
	engine   *classifier.Engine
}

// newApp loads configuration and wires the embedding provider, vector index
// and classification engine. The caller must call close when done.
func newApp() (*app, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	provider, err := embeddings.NewProvider(embeddings.ProviderConfig{
		Provider: cfg.Embeddings.Provider,
		Model:    cfg.Embeddings.Model,
		BaseURL:  cfg.Embeddings.BaseURL,
		CacheDir: cfg.Embeddings.CacheDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	index, err := vectorindex.New(vectorindex.Config{
		Provider: cfg.VectorIndex.Provider,
		Chromem: vectorindex.ChromemConfig{
			Path:       cfg.VectorIndex.Chromem.Path,
			Compress:   cfg.VectorIndex.Chromem.Compress,
			Collection: cfg.VectorIndex.Chromem.Collection,
			VectorSize: provider.Dimension(),
		},
		Qdrant: vectorindex.QdrantConfig{
			Host:       cfg.VectorIndex.Qdrant.Host,
			Port:       cfg.VectorIndex.Qdrant.Port,
			Collection: cfg.VectorIndex.Qdrant.Collection,
			VectorSize: uint64(provider.Dimension()),
			UseTLS:     cfg.VectorIndex.Qdrant.UseTLS,
		},
	}, provider, logger)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}

	engine, err := classifier.NewEngine(classifier.Config{
		K:         cfg.Classifier.K,
		BatchSize: cfg.Classifier.BatchSize,
		Workers:   cfg.Classifier.Workers,
		Fusion: fusion.Config{
			PatternConfidence:   cfg.Classifier.PatternConfidence,
			SemanticThreshold:   cfg.Classifier.SemanticThreshold,
			Boost:               cfg.Classifier.Boost,
			KeywordThreshold:    cfg.Classifier.KeywordThreshold,
			KeywordMarginWeight: cfg.Classifier.KeywordMarginWeight,
			DefaultConfidence:   cfg.Classifier.DefaultConfidence,
		},
	}, rules.DefaultRuleSet(), provider, index, logger)
	if err != nil {
		index.Close()
		provider.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		index:    index,
		engine:   engine,
	}, nil
}

// train loads the training dataset and trains the engine.
func (a *app) train(ctx context.Context) error {
	examples, err := dataset.LoadTraining(a.cfg.Dataset.Training)
	if err != nil {
		return fmt.Errorf("failed to load training data: %w", err)
	}

	a.logger.Info("training classifier",
		zap.String("dataset", a.cfg.Dataset.Training),
		zap.Int("examples", len(examples)))

	if err := a.engine.Train(ctx, examples); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	return nil
}

func (a *app) close() {
	if err := a.index.Close(); err != nil {
		a.logger.Warn("failed to close vector index", zap.Error(err))
	}
	if err := a.provider.Close(); err != nil {
		a.logger.Warn("failed to close embedding provider", zap.Error(err))
	}
	_ = logging.Sync(a.logger)
}
