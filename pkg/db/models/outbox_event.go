package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// OutboxEvent is a domain event written in the same transaction as the state
// change it describes. The publisher drains unpublished rows and relays them
// to Pub/Sub.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:text;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID   string                    `gorm:"column:aggregate_id;type:text;not null;index:ix_outbox_events_aggregate_id"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error;type:text"`
	PublishedAt   *time.Time                `gorm:"column:published_at;index:ix_outbox_events_published_at"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
