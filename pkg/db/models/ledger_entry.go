package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// LedgerEntry is one immutable money movement. Amounts are positive and
// direction-tagged. The only post-insert write ever applied is stamping
// unlocked_at; corrections are new compensating entries. The idempotency key
// is unique at the storage layer so replayed fund operations cannot
// double-write regardless of application guards.
type LedgerEntry struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID       uuid.UUID             `gorm:"column:account_id;type:uuid;not null;index"`
	Direction       enums.LedgerDirection `gorm:"column:direction;type:ledger_direction;not null"`
	Amount          decimal.Decimal       `gorm:"column:amount;type:numeric(14,2);not null"`
	Category        enums.LedgerCategory  `gorm:"column:category;type:ledger_category;not null"`
	RelatedOrderID  *uuid.UUID            `gorm:"column:related_order_id;type:uuid;index"`
	RelatedPayoutID *uuid.UUID            `gorm:"column:related_payout_id;type:uuid"`
	Locked          bool                  `gorm:"column:locked;not null;default:false"`
	UnlockedAt      *time.Time            `gorm:"column:unlocked_at"`
	IdempotencyKey  string                `gorm:"column:idempotency_key;type:text;not null;uniqueIndex:ux_ledger_entries_idempotency_key"`
	Note            *string               `gorm:"column:note"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}

// SignedAmount applies the direction to the stored magnitude.
func (e LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Direction == enums.LedgerDirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// CountsAsLocked reports whether the entry still sits in the locked bucket.
func (e LedgerEntry) CountsAsLocked() bool {
	return e.Locked && e.UnlockedAt == nil
}
