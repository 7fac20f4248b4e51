package router

import (
	"fmt"
	"time"

	"github.com/tariqmansouri/vendora-backend/internal/analytics/types"
	analyticswriter "github.com/tariqmansouri/vendora-backend/internal/analytics/writer"
)

// newRevenueRow builds the row skeleton shared by every handler; callers fill
// in the references and amounts their event carries.
func newRevenueRow(envelope types.Envelope, occurred time.Time, payload any) (types.LedgerRevenueRow, error) {
	if occurred.IsZero() {
		occurred = envelope.OccurredAt
	}

	payloadJSON, err := analyticswriter.EncodeJSON(payload)
	if err != nil {
		return types.LedgerRevenueRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	return types.LedgerRevenueRow{
		EventID:    envelope.EventID,
		EventType:  string(envelope.EventType),
		OccurredAt: occurred.UTC(),
		Payload:    payloadJSON,
	}, nil
}
