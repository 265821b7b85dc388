package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/classifier"
	"github.com/xaenox/aura/internal/completion"
	"github.com/xaenox/aura/internal/pipeline"
	"github.com/xaenox/aura/internal/planner"
	"github.com/xaenox/aura/internal/risk"
	"github.com/xaenox/aura/internal/safety"
	"github.com/xaenox/aura/internal/storage"
	"github.com/xaenox/aura/pkg/config"
)

const connectTimeout = 10 * time.Second

// newGenerator picks the completion backend. Without an API key every call
// degrades to the fallbacks.
func newGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (completion.Generator, error) {
	switch cfg.Completion.Provider {
	case config.ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			logger.Warn("GEMINI_API_KEY is not set, running with keyword classification only")
			return completion.OfflineGenerator{}, nil
		}
		gen, err := completion.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		logger.Info("Using Gemini completions", zap.String("model", cfg.Gemini.Model))
		return gen, nil
	default:
		if cfg.OpenAI.APIKey == "" {
			logger.Warn("OPENAI_API_KEY is not set, running with keyword classification only")
			return completion.OfflineGenerator{}, nil
		}
		logger.Info("Using OpenAI completions", zap.String("model", cfg.OpenAI.Model))
		return completion.NewOpenAIGenerator(completion.OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		}), nil
	}
}

func newStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Database.Host))
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		docs, err := storage.NewPostgresStorage(ctx, storage.DatabaseConfig{
			URL:      cfg.Database.URL,
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		return storage.New(docs), nil

	case config.BackendRedis:
		opts := &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		if cfg.Redis.URL != "" {
			parsed, err := redis.ParseURL(cfg.Redis.URL)
			if err != nil {
				return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
			}
			opts = parsed
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("Using Redis storage", zap.String("addr", opts.Addr))
		return storage.New(storage.NewRedisStorage(client, cfg.Redis.KeyPrefix)), nil

	default:
		logger.Info("Using in-memory storage")
		return storage.New(storage.NewMemoryStorage()), nil
	}
}

func newClassifier(svc completion.Service, cfg *config.Config, logger *zap.Logger) *classifier.Classifier {
	return classifier.New(svc, cfg.Classifier.MinConfidence, logger)
}

func newPipeline(svc completion.Service, store storage.Storage, cfg *config.Config, logger *zap.Logger) *pipeline.Pipeline {
	return pipeline.New(pipeline.Components{
		Classifier: newClassifier(svc, cfg, logger),
		Assessor:   risk.NewAssessor(risk.DefaultTables()),
		Gate:       safety.NewGate(),
		Planner:    planner.New(svc, logger),
		Completion: svc,
		Store:      store,
	}, logger)
}
