package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"workshops/internal/config"
	"workshops/internal/log"
	"workshops/internal/notify"
	"workshops/internal/queue"
	"workshops/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.WithComponent(log.New(cfg.Environment, cfg.LogLevel), "mail-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := queue.Dial(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	processor := tasks.NewProcessor(notify.NewMailer(cfg.Mail), logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Queues.ClaimInterval,
		logger,
		processor,
	)

	done := make(chan error, 1)
	go func() {
		done <- consumer.Start(ctx)
	}()

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped unexpectedly")
		return
	}
	logger.Info().Msg("worker exited cleanly")
}
