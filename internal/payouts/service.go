package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/internal/ledger"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/metrics"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox/payloads"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type walletLedger interface {
	Balance(ctx context.Context, accountID uuid.UUID) (*ledger.BalanceView, error)
	BalanceForUpdate(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*ledger.BalanceView, error)
	Debit(ctx context.Context, tx *gorm.DB, input ledger.EntryInput) (*models.LedgerEntry, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ListScope restricts payout listings. Vendors see their own requests; admins
// see everything.
type ListScope struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// PayoutList is one page of payout requests plus the next-page cursor.
type PayoutList struct {
	Payouts    []models.PayoutRequest
	NextCursor string
}

// Service runs the withdrawal workflow: the fund holder requests, an admin
// approves or rejects, and an admin records the executed bank transfer. The
// wallet is debited only at the pay step.
type Service interface {
	Request(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.PayoutRequest, error)
	Approve(ctx context.Context, payoutID, adminID uuid.UUID, note *string) (*models.PayoutRequest, error)
	Reject(ctx context.Context, payoutID, adminID uuid.UUID, note *string) (*models.PayoutRequest, error)
	Pay(ctx context.Context, payoutID, adminID uuid.UUID, transactionReference string) (*models.PayoutRequest, error)
	List(ctx context.Context, scope ListScope, params pagination.Params, filters ListFilters) (*PayoutList, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	wallet  walletLedger
	outbox  outboxPublisher
	metrics *metrics.EngineMetrics
}

// NewService builds the payout service. Metrics may be nil.
func NewService(tx txRunner, repo Repository, wallet walletLedger, publisher outboxPublisher, engineMetrics *metrics.EngineMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payout repository required")
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		wallet:  wallet,
		outbox:  publisher,
		metrics: engineMetrics,
	}, nil
}

func (s *service) Request(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.PayoutRequest, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}

	// Soft check against the current available balance. The hard check runs
	// again under the account row lock when the payout is executed.
	balance, err := s.wallet.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance.Available.LessThan(amount) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds,
			fmt.Sprintf("available balance %s is below the requested %s", balance.Available, amount))
	}

	payout := &models.PayoutRequest{
		ID:       uuid.New(),
		UserID:   userID,
		Amount:   amount,
		Currency: balance.Currency,
		Status:   enums.PayoutStatusPending,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, payout); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutRequested,
			AggregateType: enums.AggregatePayout,
			AggregateID:   payout.ID.String(),
			Actor:         &outbox.ActorRef{UserID: userID, Role: enums.RoleVendor.String()},
			Data: payloads.PayoutRequestedEvent{
				PayoutID: payout.ID,
				UserID:   userID,
				Amount:   amount,
				Currency: payout.Currency,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

func (s *service) Approve(ctx context.Context, payoutID, adminID uuid.UUID, note *string) (*models.PayoutRequest, error) {
	updated, err := s.decide(ctx, payoutID, adminID, note, enums.PayoutStatusApproved)
	if err != nil {
		return nil, err
	}
	s.metrics.IncPayoutDecision(enums.PayoutStatusApproved.String())
	return updated, nil
}

func (s *service) Reject(ctx context.Context, payoutID, adminID uuid.UUID, note *string) (*models.PayoutRequest, error) {
	updated, err := s.decide(ctx, payoutID, adminID, note, enums.PayoutStatusRejected)
	if err != nil {
		return nil, err
	}
	s.metrics.IncPayoutDecision(enums.PayoutStatusRejected.String())
	return updated, nil
}

// decide moves a payout to approved or rejected under the request row lock.
// Approval only comes out of pending; rejection also pulls back an approved
// request as long as it has not been paid.
func (s *service) decide(ctx context.Context, payoutID, adminID uuid.UUID, note *string, target enums.PayoutStatus) (*models.PayoutRequest, error) {
	if payoutID == uuid.Nil || adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id and admin id are required")
	}

	var updated *models.PayoutRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payout, err := repo.FindByIDForUpdate(ctx, payoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payout request not found")
			}
			return err
		}

		allowed := payout.Status == enums.PayoutStatusPending
		if target == enums.PayoutStatusRejected {
			allowed = payout.IsOpen()
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("payout request is %s and cannot move to %s", payout.Status, target))
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":     target,
			"decided_by": adminID,
			"decided_at": now,
		}
		if note != nil {
			updates["admin_note"] = *note
		}
		if err := repo.Update(ctx, payout.ID, updates); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutDecided,
			AggregateType: enums.AggregatePayout,
			AggregateID:   payout.ID.String(),
			Actor:         &outbox.ActorRef{UserID: adminID, Role: enums.RoleAdmin.String()},
			Data: payloads.PayoutDecidedEvent{
				PayoutID:  payout.ID,
				UserID:    payout.UserID,
				Status:    target,
				DecidedBy: adminID,
			},
		}); err != nil {
			return err
		}

		updated, err = repo.FindByID(ctx, payout.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Pay(ctx context.Context, payoutID, adminID uuid.UUID, transactionReference string) (*models.PayoutRequest, error) {
	if payoutID == uuid.Nil || adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id and admin id are required")
	}
	if transactionReference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	var updated *models.PayoutRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payout, err := repo.FindByIDForUpdate(ctx, payoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payout request not found")
			}
			return err
		}
		if payout.Status != enums.PayoutStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("payout request is %s and cannot be paid", payout.Status))
		}

		// Locks the wallet account row and recomputes available from the
		// entries, so a racing payout on the same account serializes here.
		balance, err := s.wallet.BalanceForUpdate(ctx, tx, payout.UserID)
		if err != nil {
			return err
		}
		if balance.Available.LessThan(payout.Amount) {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds,
				fmt.Sprintf("available balance %s no longer covers the payout of %s", balance.Available, payout.Amount))
		}

		_, err = s.wallet.Debit(ctx, tx, ledger.EntryInput{
			AccountID:       payout.UserID,
			Amount:          payout.Amount,
			Category:        enums.LedgerCategoryPayout,
			RelatedPayoutID: &payout.ID,
			IdempotencyKey:  fmt.Sprintf("payout:%s", payout.ID),
			Currency:        payout.Currency,
		})
		if err != nil && !errors.Is(err, ledger.ErrDuplicateEntry) {
			return err
		}

		now := time.Now().UTC()
		if err := repo.Update(ctx, payout.ID, map[string]any{
			"status":                enums.PayoutStatusPaid,
			"paid_at":               now,
			"transaction_reference": transactionReference,
		}); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutPaid,
			AggregateType: enums.AggregatePayout,
			AggregateID:   payout.ID.String(),
			Actor:         &outbox.ActorRef{UserID: adminID, Role: enums.RoleAdmin.String()},
			Data: payloads.PayoutPaidEvent{
				PayoutID:             payout.ID,
				UserID:               payout.UserID,
				Amount:               payout.Amount,
				Currency:             payout.Currency,
				TransactionReference: transactionReference,
			},
		}); err != nil {
			return err
		}

		updated, err = repo.FindByID(ctx, payout.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncPayoutDecision(enums.PayoutStatusPaid.String())
	s.metrics.IncFundsMovement("payout")
	return updated, nil
}

func (s *service) List(ctx context.Context, scope ListScope, params pagination.Params, filters ListFilters) (*PayoutList, error) {
	switch scope.Role {
	case enums.RoleAdmin:
		// Admin filters pass through untouched.
	case enums.RoleVendor:
		holderID := scope.UserID
		filters.UserID = &holderID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list payouts")
	}

	payouts, cursor, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, err
	}
	return &PayoutList{Payouts: payouts, NextCursor: cursor}, nil
}
