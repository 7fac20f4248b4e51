package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
)

// PayoutResponse is the wire shape of one payout request.
type PayoutResponse struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               uuid.UUID       `json:"user_id"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Status               string          `json:"status"`
	AdminNote            *string         `json:"admin_note,omitempty"`
	TransactionReference *string         `json:"transaction_reference,omitempty"`
	DecidedBy            *uuid.UUID      `json:"decided_by,omitempty"`
	DecidedAt            *time.Time      `json:"decided_at,omitempty"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// PayoutListResponse is one page of payout requests plus the next-page cursor.
type PayoutListResponse struct {
	Payouts    []PayoutResponse `json:"payouts"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type entryResponse struct {
	ID             uuid.UUID       `json:"id"`
	AccountID      uuid.UUID       `json:"account_id"`
	Direction      string          `json:"direction"`
	Amount         decimal.Decimal `json:"amount"`
	Category       string          `json:"category"`
	RelatedOrderID *uuid.UUID      `json:"related_order_id,omitempty"`
	RelatedPayout  *uuid.UUID      `json:"related_payout_id,omitempty"`
	Locked         bool            `json:"locked"`
	UnlockedAt     *time.Time      `json:"unlocked_at,omitempty"`
	Note           *string         `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type entryListResponse struct {
	Entries    []entryResponse `json:"entries"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// NewPayoutResponse maps a stored payout request onto the wire shape.
func NewPayoutResponse(payout *models.PayoutRequest) PayoutResponse {
	if payout == nil {
		return PayoutResponse{}
	}
	return PayoutResponse{
		ID:                   payout.ID,
		UserID:               payout.UserID,
		Amount:               payout.Amount,
		Currency:             string(payout.Currency),
		Status:               string(payout.Status),
		AdminNote:            payout.AdminNote,
		TransactionReference: payout.TransactionReference,
		DecidedBy:            payout.DecidedBy,
		DecidedAt:            payout.DecidedAt,
		PaidAt:               payout.PaidAt,
		CreatedAt:            payout.CreatedAt,
		UpdatedAt:            payout.UpdatedAt,
	}
}

// NewPayoutListResponse maps one page of stored payout requests.
func NewPayoutListResponse(payouts []models.PayoutRequest, nextCursor string) PayoutListResponse {
	mapped := make([]PayoutResponse, 0, len(payouts))
	for i := range payouts {
		mapped = append(mapped, NewPayoutResponse(&payouts[i]))
	}
	return PayoutListResponse{Payouts: mapped, NextCursor: nextCursor}
}

func newEntryListResponse(entries []models.LedgerEntry, nextCursor string) entryListResponse {
	mapped := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		mapped = append(mapped, entryResponse{
			ID:             entry.ID,
			AccountID:      entry.AccountID,
			Direction:      string(entry.Direction),
			Amount:         entry.Amount,
			Category:       string(entry.Category),
			RelatedOrderID: entry.RelatedOrderID,
			RelatedPayout:  entry.RelatedPayoutID,
			Locked:         entry.Locked,
			UnlockedAt:     entry.UnlockedAt,
			Note:           entry.Note,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return entryListResponse{Entries: mapped, NextCursor: nextCursor}
}
