package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/kafka"
	kafkaconfig "onehotel/pkg/kafka/config"
	"onehotel/pkg/logger"

	"github.com/sony/gobreaker"
)

const source = "hotel-service"

// sender is the part of kafka.Producer the publisher needs.
type sender interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer sender
	cb       *gobreaker.CircuitBreaker
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafkaPublisher(cfg *kafkaconfig.Config, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, cfg, log), nil
}

func newKafkaPublisher(producer sender, cfg *kafkaconfig.Config, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		cb:       circuitBreaker("kafka-events", cfg.BreakerFailures, cfg.BreakerTimeout, log),
		timeout:  cfg.PublishTimeout,
		log:      log,
	}
}

func circuitBreaker(name string, failures int, timeout time.Duration, log *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     timeout,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(failures)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		},
	)
}

// Publish returns Unavailable without touching the broker while the circuit is open.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.AggregateID).
		WithEventID(event.ID).
		WithEventType(string(event.Type)).
		WithCorrelationID(event.CorrelationID).
		WithSchemaVersion(SchemaVersion).
		WithSource(source).
		WithValue(event).
		Build()
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.Type, err)
	}

	_, err = p.cb.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return nil, p.producer.Publish(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Unavailable("Event bus")
	}
	return err
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
