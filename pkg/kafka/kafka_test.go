package kafka

import (
	"context"
	"errors"
	"testing"

	kafkaconfig "onehotel/pkg/kafka/config"
	"onehotel/pkg/logger"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("room-1").
		WithEventType("room.created").
		WithCorrelationID("req-1").
		WithValue(map[string]int{"number": 101}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.GetEventType() != "room.created" || msg.GetCorrelationID() != "req-1" {
		t.Errorf("unexpected headers %v", msg.Headers)
	}

	var decoded map[string]int
	if err := msg.DecodeValue(&decoded); err != nil || decoded["number"] != 101 {
		t.Errorf("DecodeValue() = %v, %v", decoded, err)
	}
}

func TestMessageBuilder_ValueError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Fatal("expected encoding error")
	}
}

func TestRetryCount(t *testing.T) {
	msg, _ := NewMessage().WithKey("k").WithValue("v").Build()
	if msg.GetRetryCount() != 0 {
		t.Fatalf("expected 0 retries")
	}
	msg.IncrementRetryCount()
	msg.IncrementRetryCount()
	if msg.GetRetryCount() != 2 {
		t.Errorf("expected 2 retries, got %d", msg.GetRetryCount())
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		retries int
		want    bool
	}{
		{"nil", nil, 0, false},
		{"transient", NewTransientError("db", errors.New("x")), 0, true},
		{"transient exhausted", NewTransientError("db", errors.New("x")), 3, false},
		{"permanent", NewPermanentError("bad payload", nil), 0, false},
		{"network pattern", errors.New("dial tcp: connection refused"), 1, true},
		{"unknown", errors.New("bad json"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err, tt.retries, 3); got != tt.want {
				t.Errorf("ShouldRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProducerPublishValidation(t *testing.T) {
	cfg := kafkaconfig.Load()
	cfg.DLQ = ""
	producer, err := NewProducer(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewProducer() error = %v", err)
	}

	if err := producer.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := producer.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}

	if err := producer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := producer.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestConsumerProcessRetriesTransient(t *testing.T) {
	calls := 0
	c := &Consumer{
		maxRetries: 3,
		log:        logger.Nop(),
		handler: func(ctx context.Context, msg Message) error {
			calls++
			if calls < 3 {
				return NewTransientError("busy", nil)
			}
			return nil
		},
	}

	msg, _ := NewMessage().WithKey("k").WithValue("v").Build()
	if err := c.process(context.Background(), msg); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestConsumerProcessStopsOnPermanent(t *testing.T) {
	calls := 0
	c := &Consumer{
		maxRetries: 3,
		log:        logger.Nop(),
		handler: func(ctx context.Context, msg Message) error {
			calls++
			return NewPermanentError("bad", nil)
		},
	}
	msg, _ := NewMessage().WithKey("k").WithValue("v").Build()
	if err := c.process(context.Background(), msg); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
