package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/llm"
	"backend/internal/ratelimit"
	"backend/internal/repository"
	"backend/internal/server"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, cfg.MigrationsURL(), logger)

	// One limiter instance spaces out every provider call in the process.
	limiter := ratelimit.NewLimiter(cfg.MinInterval(), logger)

	providers := map[string]llm.Provider{}
	names := map[string]string{}
	defaultID := ""

	if apiKey := cfg.LLMAPIKey(); apiKey != "" {
		openaiProvider, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:      apiKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		}, limiter, logger)
		if err != nil {
			logger.Fatal("Failed to initialize LLM provider", zap.Error(err))
		}
		modelID := cfg.LLM.Model
		if modelID == "" {
			modelID = "gpt-4o-mini"
		}
		providers[modelID] = openaiProvider
		names[modelID] = modelID
		defaultID = modelID
		logger.Info("LLM provider initialized", zap.String("model", modelID))
	} else {
		logger.Warn("No LLM API key configured, running with the offline provider only")
	}

	// The offline provider keeps the API usable without credentials.
	providers["offline"] = llm.NewStaticProvider("offline", llm.DecisionUnknown)
	names["offline"] = "Offline (no provider)"
	if defaultID == "" {
		defaultID = "offline"
	}

	settingsRepo := repository.NewSettingsRepository(db, logger)
	registry, err := llm.NewRegistry(providers, names, defaultID, settingsRepo, logger)
	if err != nil {
		logger.Fatal("Failed to build model registry", zap.Error(err))
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.NewServer(db, cfg, registry, logger)
	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	logger.Info("Application stopped.")
}
