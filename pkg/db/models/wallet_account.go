package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// WalletAccount is the materialized balance view of one user's ledger slice.
// Every ledger write updates it in the same transaction; the reconciliation
// job asserts it still equals the entry sums. The ledger, not this row, is the
// source of truth.
type WalletAccount struct {
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey"`
	Available decimal.Decimal `gorm:"column:available;type:numeric(14,2);not null;default:0"`
	Locked    decimal.Decimal `gorm:"column:locked;type:numeric(14,2);not null;default:0"`
	Currency  enums.Currency  `gorm:"column:currency;type:text;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
