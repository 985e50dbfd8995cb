package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/kafka"
	kafkaconfig "onehotel/pkg/kafka/config"
	"onehotel/pkg/logger"
	"onehotel/pkg/middleware"
)

type mockSender struct {
	publishFn func(ctx context.Context, msg kafka.Message) error
	sent      []kafka.Message
}

func (m *mockSender) Publish(ctx context.Context, msg kafka.Message) error {
	m.sent = append(m.sent, msg)
	if m.publishFn != nil {
		return m.publishFn(ctx, msg)
	}
	return nil
}

func (m *mockSender) Close() error { return nil }

func testConfig() *kafkaconfig.Config {
	cfg := kafkaconfig.Load()
	cfg.BreakerFailures = 2
	cfg.BreakerTimeout = time.Minute
	cfg.PublishTimeout = time.Second
	return cfg
}

func TestNew_CarriesRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	event := New(ctx, ReservationCreated, "res-1", nil)

	if event.ID == "" {
		t.Error("expected event id")
	}
	if event.CorrelationID != "req-42" {
		t.Errorf("expected correlation id req-42, got %q", event.CorrelationID)
	}
	if event.AggregateID != "res-1" || event.Type != ReservationCreated {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestKafkaPublisher_MessageShape(t *testing.T) {
	sender := &mockSender{}
	p := newKafkaPublisher(sender, testConfig(), logger.Nop())

	event := New(context.Background(), RoomCreated, "room-1", map[string]int{"number": 1})
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Key != "room-1" {
		t.Errorf("expected key room-1, got %s", msg.Key)
	}
	if msg.GetEventID() != event.ID || msg.GetEventType() != string(RoomCreated) {
		t.Errorf("unexpected headers %v", msg.Headers)
	}

	var decoded Event
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if decoded.Type != RoomCreated {
		t.Errorf("expected decoded type %s, got %s", RoomCreated, decoded.Type)
	}
}

func TestKafkaPublisher_OpensCircuit(t *testing.T) {
	sender := &mockSender{
		publishFn: func(ctx context.Context, msg kafka.Message) error {
			return errors.New("connection refused")
		},
	}
	p := newKafkaPublisher(sender, testConfig(), logger.Nop())
	event := New(context.Background(), RoomDeleted, "room-1", nil)

	for i := 0; i < 2; i++ {
		if err := p.Publish(context.Background(), event); err == nil {
			t.Fatalf("attempt %d: expected broker error", i)
		}
	}

	err := p.Publish(context.Background(), event)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeUnavailable {
		t.Fatalf("expected unavailable error once open, got %v", err)
	}
	if len(sender.sent) != 2 {
		t.Errorf("open circuit should not reach the broker, sent %d", len(sender.sent))
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	_ = r.Publish(context.Background(), Event{Type: RoomCreated})
	_ = r.Publish(context.Background(), Event{Type: RoomDeleted})

	types := r.Types()
	if len(types) != 2 || types[0] != RoomCreated || types[1] != RoomDeleted {
		t.Errorf("unexpected types %v", types)
	}
}

func TestAuditHandler(t *testing.T) {
	handler := NewAuditHandler(logger.Nop())

	valid, err := json.Marshal(Event{ID: "e1", Type: ReservationCreated, AggregateID: "r1", OccurredAt: time.Now()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	unknown, _ := json.Marshal(Event{ID: "e2", Type: "room.painted", AggregateID: "r1"})

	tests := []struct {
		name    string
		value   []byte
		wantErr bool
	}{
		{"known event", valid, false},
		{"unknown type", unknown, true},
		{"not json", []byte("{"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler(context.Background(), kafka.Message{Key: "r1", Value: tt.value})
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if err != nil && kafka.ShouldRetry(err, 0, 3) {
				t.Error("audit failures must not be retried")
			}
		})
	}
}
