package types

import (
	"encoding/json"
	"time"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// Envelope is the canonical shape of a domain event as the analytics worker
// sees it: outbox payload envelope fields merged with the Pub/Sub attributes.
type Envelope struct {
	EventID       string                    `json:"event_id"`
	EventType     enums.OutboxEventType     `json:"event_type"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   string                    `json:"aggregate_id"`
	OccurredAt    time.Time                 `json:"occurred_at"`
	Payload       json.RawMessage           `json:"payload"`
}
