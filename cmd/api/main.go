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
	"contentgate/internal/daily"
	"contentgate/internal/generate"
	"contentgate/internal/http/handlers"
	"contentgate/internal/http/httpapi"
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
		logger.Fatal().Err(err).Msg("api: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	contentRepo := repo.NewContentRepository(runner)
	jobRepo := repo.NewJobRepository(runner)

	contentCache := cache.New(contentRepo, logger)
	sweeper := cache.NewSweeper(contentCache, cache.DefaultRetention, logger)
	breaker := quota.NewBreaker(logger, quota.WithCooldown(cfg.QuotaCooldown))

	geminiClient, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure gemini client")
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Str("model", geminiClient.Model()).Msg("api: gemini api key missing, using synthetic generation")
	}

	orchestrator := generate.NewOrchestrator(contentCache, breaker, imageprovider.NewGeminiGenerator(geminiClient), logger)
	manager := jobs.NewManager(jobRepo, orchestrator, logger, cfg.WorkerPollInterval)

	app := &handlers.App{
		Logger:    logger,
		Generator: orchestrator,
		Daily:     daily.NewSelector(contentRepo),
		Jobs:      manager,
		Sweeper:   sweeper,
		Store:     contentCache,
		Stats:     contentRepo,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("api: listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: shutdown failed")
	}
	logger.Info().Msg("api: stopped")
}
