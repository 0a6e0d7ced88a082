package main

import (
	"context"
	"os"
	"time"

	"paletteapi/config"
	"paletteapi/controllers"
	"paletteapi/dbhelper"
	"paletteapi/repository"
	"paletteapi/services"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load(envOr("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.Env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable is not set!")
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		Release:          cfg.Release,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("sentry.Init")
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	db := dbhelper.SetupDB(cfg.Database)
	repo := repository.NewGormRepository(db)

	style, _, err := services.NewStyleServiceFromConfig(context.Background(), cfg, repo)
	if err != nil {
		log.Fatal().Err(err).Msg("style service")
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Broker.Addr})
	defer asynqClient.Close()

	e := controllers.SetupServer(cfg, repo, style, asynqClient)
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10)))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("api starting")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
