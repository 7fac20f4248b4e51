package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// PayoutRequest tracks a vendor's withdrawal from its available balance
// through the pending / approved / paid lifecycle. The wallet is only debited
// when an admin executes payment; until then the request holds nothing, and
// the available balance is re-checked at execution.
type PayoutRequest struct {
	ID                   uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID               uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index:ix_payout_requests_user_id"`
	Amount               decimal.Decimal    `gorm:"column:amount;type:numeric(14,2);not null"`
	Currency             enums.Currency     `gorm:"column:currency;type:text;not null"`
	Status               enums.PayoutStatus `gorm:"column:status;type:payout_status;not null;default:'pending'"`
	AdminNote            *string            `gorm:"column:admin_note;type:text"`
	TransactionReference *string            `gorm:"column:transaction_reference;type:text"`
	DecidedBy            *uuid.UUID         `gorm:"column:decided_by;type:uuid"`
	DecidedAt            *time.Time         `gorm:"column:decided_at"`
	PaidAt               *time.Time         `gorm:"column:paid_at"`
	CreatedAt            time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOpen reports whether the request can still be decided. Pending requests
// await approval or rejection; approved requests can still be rejected until
// they are paid.
func (p *PayoutRequest) IsOpen() bool {
	return p.Status == enums.PayoutStatusPending || p.Status == enums.PayoutStatusApproved
}
