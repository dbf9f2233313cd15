package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"studio/internal/http/handlers"
	httpapi "studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/providers/replicate"
	"studio/internal/readiness"
	"studio/internal/session"
	"studio/internal/storage"
	"studio/internal/studio"
)

func main() {
	// Konfigurasi & logger
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ReplicateToken == "" {
		logger.Warn().Msg("studio: REPLICATE_API_TOKEN not set, requests must supply their own token")
	}

	generator := replicate.NewClient(replicate.Options{
		BaseURL:        cfg.ReplicateBase,
		Logger:         &logger,
		RequestTimeout: cfg.RemoteRequestTimeout(),
		PollInterval:   cfg.PollInterval(),
		MaxPolls:       cfg.MaxPolls,
	})
	poller := readiness.NewPoller(readiness.Options{Logger: &logger})

	prompts, err := storage.NewPromptLog(cfg.PromptsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("studio: failed to configure prompt log")
	}
	svc, err := studio.NewService(studio.Options{
		Generator:         generator,
		Readiness:         poller,
		Prompts:           prompts,
		Logger:            &logger,
		DefaultCredential: cfg.ReplicateToken,
		ReadyAttempts:     cfg.ReadyAttempts,
		ReadyDelay:        cfg.ReadyDelay(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("studio: failed to configure service")
	}

	sessions, err := session.NewManager(session.Options{
		OutputDir: cfg.OutputDir,
		TTL:       cfg.SessionTTL(),
		Logger:    &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("studio: failed to configure sessions")
	}
	go sessions.Run(ctx, time.Minute)

	app := handlers.NewApp(svc, sessions, &logger, cfg.MaxUploadBytes())
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:            &logger,
		DefaultLocale:     cfg.DefaultLocale,
		AllowedOrigins:    cfg.AllowedOrigins(),
		SecureCookies:     cfg.AppEnv == "production",
		GenerateRateLimit: cfg.GenerateRateLimit,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("output_dir", cfg.OutputDir).Msg("studio: listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("studio: http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("studio: failed to shutdown server")
	}
	logger.Info().Msg("studio: server stopped")
}
