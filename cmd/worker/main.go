package main

import (
	"context"
	"os"
	"time"

	"paletteapi/config"
	"paletteapi/dbhelper"
	"paletteapi/repository"
	"paletteapi/services"
	"paletteapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func runScheduler(cfg *config.Config) {
	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: cfg.Broker.Addr}, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	entries := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: cfg.Audit.Cron,
			task: tasks.NewAuditTask(),
			desc: "Wardrobe match audit",
		},
	}

	for _, t := range entries {
		entryID, err := scheduler.Register(t.cron, t.task, asynq.Queue(tasks.QueueWardrobe))
		if err != nil {
			log.Fatal().Err(err).Str("task", t.desc).Msg("failed to register task")
		}
		log.Info().Str("task", t.desc).Str("entry_id", entryID).Str("cron", t.cron).Msg("registered task")
	}

	if err := scheduler.Run(); err != nil {
		log.Fatal().Err(err).Msg("scheduler failed")
	}
}

func main() {
	cfg, err := config.Load(envOr("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.Env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	err = sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Env,
		Release:     cfg.Release,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("sentry.Init")
	}
	defer sentry.Flush(2 * time.Second)

	ctx := context.Background()
	db := dbhelper.SetupDB(cfg.Database)
	repo := repository.NewGormRepository(db)
	style, gemini, err := services.NewStyleServiceFromConfig(ctx, cfg, repo)
	if err != nil {
		log.Fatal().Err(err).Msg("style service")
	}

	deps := tasks.TaggingDeps{
		Repo:    repo,
		Storage: style.Storage,
		Tagger:  gemini,
		Style:   style,
	}
	if cfg.Notifications.Enabled {
		app, err := firebase.NewApp(ctx, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("error initializing firebase app")
		}
		deps.Notifier = &services.FirebaseNotifier{App: app, Repo: repo}
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Broker.Addr},
		asynq.Config{Concurrency: cfg.Broker.Concurrency, Queues: map[string]int{
			tasks.QueueWardrobe: 7,
			"default":           3,
		}},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeTagItem, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleTagItemTask(ctx, t, deps)
	})
	mux.HandleFunc(tasks.TypeAudit, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleAuditTask(ctx, t, style, cfg.Audit.BatchSize)
	})

	go runScheduler(cfg)
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
