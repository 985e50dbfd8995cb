package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"onehotel/pkg/config"
	"onehotel/pkg/events"
	"onehotel/pkg/kafka"
	kafkaconfig "onehotel/pkg/kafka/config"
	kafkamiddleware "onehotel/pkg/kafka/middleware"
)

const ServiceName = "hotel-events-audit"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg := kafkaconfig.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	consumer, err := kafka.NewConsumer(kafkaCfg, events.NewAuditHandler(cfg.Log), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting audit consumer", "topic", kafkaCfg.Topic, "group_id", kafkaCfg.GroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Audit consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Audit consumer stopped gracefully")
}
