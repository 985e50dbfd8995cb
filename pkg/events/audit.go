package events

import (
	"context"
	"encoding/json"
	"fmt"

	"onehotel/pkg/kafka"
	"onehotel/pkg/logger"
)

var knownTypes = map[Type]bool{
	RoomCreated:        true,
	RoomUpdated:        true,
	RoomDeleted:        true,
	ReservationCreated: true,
	ReservationUpdated: true,
	ReservationDeleted: true,
}

// NewAuditHandler returns a consumer handler that writes every lifecycle
// event to the audit log. Undecodable or unknown events are permanent
// failures and go straight to the dead letter topic.
func NewAuditHandler(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return kafka.NewPermanentError("failed to decode event", err)
		}
		if !knownTypes[event.Type] {
			return kafka.NewPermanentError(fmt.Sprintf("unknown event type %q", event.Type), nil)
		}

		log.Info("audit",
			"event_id", event.ID,
			"event_type", event.Type,
			"aggregate_id", event.AggregateID,
			"correlation_id", event.CorrelationID,
			"occurred_at", event.OccurredAt,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return nil
	}
}
