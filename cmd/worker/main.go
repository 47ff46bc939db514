package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"eie-registry/internal/app"
	"eie-registry/internal/config"
	"eie-registry/internal/events"
	"eie-registry/internal/queue"
	"eie-registry/internal/repository"
	"eie-registry/internal/seed"
	"eie-registry/internal/worker"
	"eie-registry/pkg/database"
	applog "eie-registry/pkg/logger"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		boot := applog.New("info", true)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := applog.New(cfg.LogLevel, cfg.IsDevelopment())

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := seed.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	store, err := app.NewStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	// upload events reach the API hub through the outbox
	outboxRepo := repository.NewOutboxRepo(db)
	notifier := events.NewOutboxNotifier(db, outboxRepo, log)
	processor := worker.NewProcessor(app.NewUploadProcessor(db, store, app.NewLookup(cfg, log), notifier, log), log)

	if cfg.RedisAddr == "" && len(cfg.KafkaBrokers) == 0 {
		log.Fatal().Msg("nothing to run: set REDIS_ADDR and/or KAFKA_BROKERS")
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.RedisAddr != "" {
		server := asynq.NewServer(app.RedisOpt(cfg), asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues:      map[string]int{queue.QueueName: 1},
			Logger:      asynqLogger{log},
		})
		if err := server.Start(processor.Handler()); err != nil {
			log.Fatal().Err(err).Msg("start asynq server")
		}
		g.Go(func() error {
			<-ctx.Done()
			server.Shutdown()
			return nil
		})
	} else {
		log.Warn().Msg("REDIS_ADDR not set, upload queue disabled")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatal().Err(err).Msg("init kafka producer")
		}
		defer producer.Close()

		publisher, err := events.NewPublisher(events.PublisherConfig{
			OutboxRepo: outboxRepo,
			Producer:   producer,
			Interval:   cfg.OutboxInterval,
			BatchSize:  cfg.OutboxBatch,
			Logger:     log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("init outbox publisher")
		}
		g.Go(func() error { return publisher.Start(ctx) })
	} else {
		log.Warn().Msg("KAFKA_BROKERS not set, outbox relay disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
	log.Info().Msg("worker exited")
}
