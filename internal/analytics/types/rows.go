package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// LedgerRevenueRow mirrors the ledger_revenue BigQuery schema. One row per
// routed ledger event; the event id doubles as the streaming-insert dedup key.
type LedgerRevenueRow struct {
	EventID            string             `bigquery:"event_id"`
	EventType          string             `bigquery:"event_type"`
	OccurredAt         time.Time          `bigquery:"occurred_at"`
	OrderID            *string            `bigquery:"order_id"`
	PayoutID           *string            `bigquery:"payout_id"`
	AccountID          *string            `bigquery:"account_id"`
	AmountCents        *int64             `bigquery:"amount_cents"`
	PlatformShareCents *int64             `bigquery:"platform_share_cents"`
	Currency           *string            `bigquery:"currency"`
	Payload            cbigquery.NullJSON `bigquery:"payload"`
}
