package main

import (
	"context"

	"onehotel/internal/migrations/seed"
	"onehotel/pkg/app"
	"onehotel/pkg/clock"
	"onehotel/pkg/config"
	"onehotel/pkg/events"
	kafkaconfig "onehotel/pkg/kafka/config"
	"onehotel/pkg/tracing"
)

const ServiceName = "hotel"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStore()
	if cfg.IdempotencyBackend == config.IdempotencyRedis {
		cfg.SetRedis()
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting hotel booking service")

	shutdownTracing, err := tracing.Setup(ServiceName, cfg.JaegerEndpoint)
	if err != nil {
		cfg.Log.Fatal("Failed to set up tracing", "error", err)
	}

	stores, err := app.NewStores(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize stores", "error", err)
	}

	clk := clock.NewSystem(cfg.Location)
	if cfg.StoreDriver == config.StoreMemory && cfg.SeedData {
		if err := seed.Run(context.Background(), stores.Rooms, stores.Reservations, clk, cfg.Log); err != nil {
			cfg.Log.Fatal("Failed to seed memory store", "error", err)
		}
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(app.Dependencies{
		Stores:          stores,
		Publisher:       initPublisher(cfg),
		Clock:           clk,
		ShutdownTracing: shutdownTracing,
	})
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg := kafkaconfig.Load()
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Event publishing disabled")
		return events.NewNoopPublisher()
	}

	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	publisher, err := events.NewKafkaPublisher(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka publisher", "error", err)
	}
	return publisher
}
