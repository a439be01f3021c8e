package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aayush-wiz/doodle-ai-app/internal/adapter/repo"
	"github.com/aayush-wiz/doodle-ai-app/internal/assembler"
	"github.com/aayush-wiz/doodle-ai-app/internal/assetgen"
	"github.com/aayush-wiz/doodle-ai-app/internal/http/handlers"
	httpapi "github.com/aayush-wiz/doodle-ai-app/internal/http/httpapi"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra/geoip"
	"github.com/aayush-wiz/doodle-ai-app/internal/middleware"
	"github.com/aayush-wiz/doodle-ai-app/internal/pipeline"
	"github.com/aayush-wiz/doodle-ai-app/internal/planner"
	"github.com/aayush-wiz/doodle-ai-app/internal/providers/image"
	"github.com/aayush-wiz/doodle-ai-app/internal/providers/llm"
	"github.com/aayush-wiz/doodle-ai-app/internal/providers/tts"
	"github.com/aayush-wiz/doodle-ai-app/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	countryResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
		countryResolver = nil
	}

	llmClient, err := llm.NewClient(llm.Options{
		APIKey:     cfg.OpenRouterAPIKey,
		BaseURL:    cfg.OpenRouterBaseURL,
		Model:      cfg.OpenRouterModel,
		HTTPClient: &http.Client{Timeout: cfg.LLMTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("llm client init failed")
	}
	imageClient, err := image.NewFalClient(image.Options{
		APIKey:     cfg.FalAPIKey,
		BaseURL:    cfg.FalBaseURL,
		Model:      cfg.FalModel,
		HTTPClient: &http.Client{Timeout: cfg.ImageTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("image client init failed")
	}
	ttsClient, err := tts.NewClient(tts.Options{
		APIKey:         cfg.ElevenLabsAPIKey,
		BaseURL:        cfg.ElevenLabsBaseURL,
		DefaultVoiceID: cfg.ElevenLabsVoiceID,
		HTTPClient:     &http.Client{Timeout: cfg.TTSTimeout},
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("tts client init failed")
	}

	store, err := storage.NewFileStore(cfg.StorageBasePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage init failed")
	}

	users := repo.NewUserRepository(dbpool)
	videos := repo.NewVideoRepository(dbpool)
	history := repo.NewHistoryRepository(dbpool)

	beatPlanner := planner.New(llmClient, cfg.PlannerRetries, logger)
	probe := assembler.NewFFprobe(cfg.FFprobePath)
	assets := assetgen.New(imageClient, ttsClient, probe, cfg.GlobalGenerationCap, cfg.UnitWorkers, logger)
	encoder := assembler.NewEncoder(cfg.FFmpegPath, logger)

	coordinator := pipeline.New(
		beatPlanner, assets, encoder, ttsClient,
		users, videos, store,
		cfg.WorkDir, cfg.JobTimeout, logger,
	)

	app := &handlers.App{
		Jobs:           coordinator,
		Voices:         ttsClient,
		Videos:         videos,
		History:        history,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	var lookup middleware.CountryLookup
	if countryResolver != nil {
		lookup = countryResolver.CountryCode
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		DefaultLanguage: cfg.DefaultLanguage,
		CountryLookup:   lookup,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		StaticDir:       store.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
