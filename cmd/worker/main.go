package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contentgate/internal/adapter/repo"
	"contentgate/internal/cache"
	"contentgate/internal/generate"
	"contentgate/internal/infra"
	"contentgate/internal/jobs"
	"contentgate/internal/providers/genai"
	imageprovider "contentgate/internal/providers/image"
	"contentgate/internal/quota"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	contentRepo := repo.NewContentRepository(runner)
	jobRepo := repo.NewJobRepository(runner)

	contentCache := cache.New(contentRepo, logger)
	breaker := quota.NewBreaker(logger, quota.WithCooldown(cfg.QuotaCooldown))

	geminiClient, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure gemini client")
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Str("model", geminiClient.Model()).Msg("worker: gemini api key missing, using synthetic generation")
	}

	orchestrator := generate.NewOrchestrator(contentCache, breaker, imageprovider.NewGeminiGenerator(geminiClient), logger)
	manager := jobs.NewManager(jobRepo, orchestrator, logger, cfg.WorkerPollInterval)

	if _, err := manager.ReconcileStuck(ctx); err != nil {
		logger.Error().Err(err).Msg("worker: startup reconciliation failed")
	}

	sweeper := cache.NewSweeper(contentCache, cache.DefaultRetention, logger)
	go sweeper.Run(ctx, cfg.SweepInterval)

	if err := manager.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
