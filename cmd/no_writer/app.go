package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/config"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/db"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/drafting"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/ingestion"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/llm"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/parsing"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/pipeline"
)

// app holds the components shared by the commands.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	client     llm.Client
	store      db.Store
	source     metrics.EventSource
	collectors *metrics.Collectors
	recorder   *metrics.Recorder
	pipeline   *pipeline.Pipeline
}

// newLogger builds the process logger.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig reads --config and the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newApp wires the pipeline. With persist set, events go to the configured
// database; otherwise they are kept in memory for the life of the command.
func newApp(ctx context.Context, persist bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, collectors: metrics.NewCollectors()}

	client, err := llm.NewClient(ctx, cfg.LLMConfig())
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Info("llm.disabled", zap.String("provider", cfg.LLMProvider))
	case err != nil:
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	default:
		a.client = client
		logger.Info("llm.enabled", zap.String("provider", string(client.Name())))
	}

	var sink metrics.Sink
	if persist && cfg.MetricsEnabled() {
		store, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open metrics store: %w", err)
		}
		a.store = store
		a.source = store
		sink = store
	} else {
		memory := metrics.NewMemorySink()
		a.source = memory
		sink = memory
	}

	a.recorder = metrics.NewRecorder(sink,
		metrics.WithLogger(logger),
		metrics.WithCollectors(a.collectors),
		metrics.WithEnabled(cfg.MetricsEnabled()),
	)

	a.pipeline = pipeline.New(
		ingestion.NewExtractor(ingestion.WithLogger(logger)),
		parsing.NewSummarizer(a.client, parsing.WithLogger(logger)),
		drafting.NewGenerator(a.client, drafting.WithLogger(logger), drafting.WithRecorder(a.recorder)),
		pipeline.WithLogger(logger),
		pipeline.WithRecorder(a.recorder),
		pipeline.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)
	return a, nil
}

// Close releases the provider client and the store.
func (a *app) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("llm.close.failed", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("db.close.failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
