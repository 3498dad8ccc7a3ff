package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/support-insights/backend/internal/ai"
	"github.com/support-insights/backend/internal/cache"
	"github.com/support-insights/backend/internal/config"
	httpapi "github.com/support-insights/backend/internal/http"
	"github.com/support-insights/backend/internal/metrics"
	"github.com/support-insights/backend/internal/refdata"
	"github.com/support-insights/backend/internal/resolver"
	"github.com/support-insights/backend/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "support-insights").Logger()

	ctx := context.Background()

	bundle := refdata.DefaultBundle()
	if cfg.ScheduleFile != "" {
		schedule, err := refdata.LoadSchedule(cfg.ScheduleFile)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.ScheduleFile).Msg("schedule not loaded, all tickets count as off-hours")
		} else {
			bundle.Schedule = schedule
		}
	}

	var dataCache cache.Cache
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL, logger)
		if err := rc.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
		dataCache = rc
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
	} else {
		dataCache = cache.NewMemoryCache(cfg.CacheTTL)
		logger.Info().Msg("using in-process cache")
	}

	var tiers []resolver.Tier
	if cfg.FirestoreProjectID != "" {
		store, err := source.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.GoogleCredentials)
		if err != nil {
			logger.Fatal().Err(err).Msg("firestore init failed")
		}
		defer store.Close()
		tiers = append(tiers, resolver.FirestoreTier(store))
	}
	if cfg.SheetsSpreadsheet != "" {
		sheets, err := source.NewSheetsSource(ctx, cfg.SheetsSpreadsheet, cfg.GoogleCredentials)
		if err != nil {
			logger.Fatal().Err(err).Msg("sheets init failed")
		}
		tiers = append(tiers, resolver.SheetsTier(sheets))
	}
	tiers = append(tiers,
		resolver.ProcessedTier(source.ProcessedSource{Root: cfg.ProcessedDataDir}),
		resolver.FileTier(source.FileSource{Root: cfg.RawDataDir}),
	)

	res := resolver.New(dataCache, tiers, bundle, logger)
	engine := metrics.New(bundle)

	var assistant ai.Assistant
	if cfg.AssistantBaseURL == "" {
		assistant = ai.MockAssistant{}
		logger.Info().Msg("using mock assistant")
	} else {
		assistant = &ai.OpenAICompatAssistant{
			BaseURL:   cfg.AssistantBaseURL,
			Model:     cfg.AssistantModel,
			APIKey:    cfg.AssistantAPIKey,
			MaxTokens: cfg.AssistantMaxTokens,
		}
	}

	router := httpapi.Router(cfg, res, engine, dataCache, assistant, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
