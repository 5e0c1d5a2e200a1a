package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"github.com/lamedts/youtube-new-video-bot/internal/config"
	"github.com/lamedts/youtube-new-video-bot/internal/db"
	"github.com/lamedts/youtube-new-video-bot/internal/handler"
	"github.com/lamedts/youtube-new-video-bot/internal/logging"
	"github.com/lamedts/youtube-new-video-bot/internal/metrics"
	"github.com/lamedts/youtube-new-video-bot/internal/repository"
	"github.com/lamedts/youtube-new-video-bot/internal/router"
	"github.com/lamedts/youtube-new-video-bot/internal/service"
	"github.com/lamedts/youtube-new-video-bot/internal/telegram"
	"github.com/lamedts/youtube-new-video-bot/internal/youtube"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.AppName)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("configuration invalid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The bot must not serve cycles without its durable store.
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, logger.With().Str("component", "db").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}
	metrics.RegisterPoolGauges(pool)

	ytClient, err := youtube.NewClient(ctx, cfg.YouTubeTokenFile,
		logger.With().Str("component", "youtube").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize youtube api client")
	}

	registry := service.NewRegistryService(repository.NewChannelRepo(pool),
		logger.With().Str("component", "registry").Logger())
	videos := repository.NewVideoRepo(pool)
	buffer := service.NewBufferService(cfg.RedisURL, cfg.AppName,
		logger.With().Str("component", "buffer").Logger())
	sink := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID)
	dispatch := service.NewDispatchService(sink, cfg.InitMode,
		logger.With().Str("component", "dispatch").Logger())
	feed := youtube.NewFeedService(logger.With().Str("component", "feed").Logger())

	orch := service.NewOrchestrator(service.OrchestratorDeps{
		Registry: registry,
		Videos:   videos,
		Buffer:   buffer,
		Dispatch: dispatch,
		Feed:     feed,
		Subs:     ytClient,
		InitMode: cfg.InitMode,
		Logger:   logger.With().Str("component", "orchestrator").Logger(),
	})

	logger.Info().
		Str("video_cron", cfg.VideoCron).
		Str("channel_cron", cfg.ChannelCron).
		Str("summary_cron", cfg.SummaryCron).
		Bool("init_mode", cfg.InitMode).
		Msg("youtube → telegram notifier starting")

	orch.AnnounceStartup(ctx, cfg.Summary())

	// Seed the channel list before the first scheduled sync tick.
	orch.SyncChannels(ctx)

	loopLogger := logger.With().Str("component", "scheduler").Logger()
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"channel-sync", cfg.ChannelCron, orch.SyncChannels},
		{"video-poll", cfg.VideoCron, orch.PollVideos},
		{"summary-flush", cfg.SummaryCron, orch.FlushSummary},
	}
	for _, job := range jobs {
		loop, err := service.NewCronLoop(job.name, job.spec, job.run, loopLogger)
		if err != nil {
			logger.Fatal().Err(err).Str("job", job.name).Msg("invalid schedule")
		}
		go loop.Start(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      "YouTube New Video Bot",
		ServerHeader: cfg.AppName,
	})
	router.Setup(app, &router.Handlers{
		Health:  handler.NewHealthHandler(pool, buffer.Client()),
		Channel: handler.NewChannelHandler(registry),
		Stats:   handler.NewStatsHandler(registry, videos),
	}, logger.With().Str("component", "http").Logger())

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal().Err(err).Msg("ops server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown error")
	}
}
