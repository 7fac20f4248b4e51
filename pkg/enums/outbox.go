package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder       OutboxAggregateType = "order"
	AggregateOrderGroup  OutboxAggregateType = "order_group"
	AggregateLedgerEntry OutboxAggregateType = "ledger_entry"
	AggregateWallet      OutboxAggregateType = "wallet"
	AggregatePayout      OutboxAggregateType = "payout"
	AggregateInvoice     OutboxAggregateType = "invoice"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateOrderGroup,
	AggregateLedgerEntry,
	AggregateWallet,
	AggregatePayout,
	AggregateInvoice,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventCheckoutConverted OutboxEventType = "checkout_converted"
	EventOrderCreated      OutboxEventType = "order_created"
	EventOrderStateChanged OutboxEventType = "order_state_changed"
	EventFundsLocked       OutboxEventType = "funds_locked"
	EventFundsUnlocked     OutboxEventType = "funds_unlocked"
	EventFundsReversed     OutboxEventType = "funds_reversed"
	EventPayoutRequested   OutboxEventType = "payout_requested"
	EventPayoutDecided     OutboxEventType = "payout_decided"
	EventPayoutPaid        OutboxEventType = "payout_paid"
	EventInvoiceIssued     OutboxEventType = "invoice_issued"
	EventInvoicePaid       OutboxEventType = "invoice_paid"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCheckoutConverted,
	EventOrderCreated,
	EventOrderStateChanged,
	EventFundsLocked,
	EventFundsUnlocked,
	EventFundsReversed,
	EventPayoutRequested,
	EventPayoutDecided,
	EventPayoutPaid,
	EventInvoiceIssued,
	EventInvoicePaid,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
