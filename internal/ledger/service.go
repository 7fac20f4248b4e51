package ledger

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/pkg/config"
	"github.com/tariqmansouri/vendora-backend/pkg/db"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

// ErrDuplicateEntry signals that the idempotency key already exists, so the
// movement was recorded by an earlier invocation. Callers treat it as a
// replay, never as a failure.
var ErrDuplicateEntry = stdErrors.New("ledger: entry already recorded")

// EntryInput describes one money movement. Amount is the positive magnitude;
// the operation (Credit or Debit) supplies the direction.
type EntryInput struct {
	AccountID       uuid.UUID
	Amount          decimal.Decimal
	Category        enums.LedgerCategory
	RelatedOrderID  *uuid.UUID
	RelatedPayoutID *uuid.UUID
	Locked          bool
	IdempotencyKey  string
	Note            *string
	Currency        enums.Currency
}

// LockResult reports what locking an order's funds credited where. The orders
// service forwards it into the funds_locked outbox event.
type LockResult struct {
	AccountID     uuid.UUID
	VendorAmount  decimal.Decimal
	PlatformShare decimal.Decimal
	Currency      enums.Currency
}

// BalanceView is the entry-derived balance of one account.
type BalanceView struct {
	AccountID uuid.UUID       `json:"accountId"`
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
	Currency  enums.Currency  `json:"currency"`
}

// EntryList is one page of ledger entries plus the next-page cursor.
type EntryList struct {
	Entries    []models.LedgerEntry
	NextCursor string
}

// Service owns all money movement. Mutations never open their own
// transaction: they join the caller's so history, ledger, and wallet rows
// commit or roll back together.
type Service interface {
	Credit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.LedgerEntry, error)
	Debit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.LedgerEntry, error)

	LockOrderFunds(ctx context.Context, tx *gorm.DB, order *models.Order) (*LockResult, error)
	UnlockByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error)
	ReverseOrderFunds(ctx context.Context, tx *gorm.DB, order *models.Order) (decimal.Decimal, error)

	Balance(ctx context.Context, accountID uuid.UUID) (*BalanceView, error)
	BalanceForUpdate(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*BalanceView, error)
	Entries(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*EntryList, error)
	Accounts(ctx context.Context) ([]models.WalletAccount, error)
}

type service struct {
	repo Repository
	cfg  config.EngineConfig
}

// NewService wires the ledger service.
func NewService(repo Repository, cfg config.EngineConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository is required")
	}
	if cfg.PlatformAccountID == uuid.Nil {
		return nil, fmt.Errorf("platform account id is required")
	}
	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.LedgerEntry, error) {
	return s.append(ctx, tx, enums.LedgerDirectionCredit, input)
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.LedgerEntry, error) {
	return s.append(ctx, tx, enums.LedgerDirectionDebit, input)
}

// append validates the movement, locks the account row, applies the
// sufficiency rule for available-bucket debits, writes the entry, and updates
// the materialized balances in the caller's transaction.
func (s *service) append(ctx context.Context, tx *gorm.DB, direction enums.LedgerDirection, input EntryInput) (*models.LedgerEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger write requires a transaction")
	}
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.IdempotencyKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger category %q", input.Category))
	}

	repo := s.repo.WithTx(tx)
	account, err := s.lockOrCreateAccount(ctx, repo, input.AccountID, s.currencyOr(input.Currency))
	if err != nil {
		return nil, err
	}

	if direction == enums.LedgerDirectionDebit && !input.Locked {
		sums, err := repo.SumBalances(ctx, input.AccountID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to recompute balance")
		}
		if sums.Available.LessThan(input.Amount) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds,
				fmt.Sprintf("available balance %s is below %s", sums.Available.StringFixed(2), input.Amount.StringFixed(2)))
		}
	}

	entry := &models.LedgerEntry{
		AccountID:       input.AccountID,
		Direction:       direction,
		Amount:          input.Amount,
		Category:        input.Category,
		RelatedOrderID:  input.RelatedOrderID,
		RelatedPayoutID: input.RelatedPayoutID,
		Locked:          input.Locked,
		IdempotencyKey:  input.IdempotencyKey,
		Note:            input.Note,
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		if db.IsUniqueViolation(err, "idempotency_key") {
			return nil, ErrDuplicateEntry
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write ledger entry")
	}

	available, locked := applyMovement(account.Available, account.Locked, direction, input.Locked, input.Amount)
	if err := repo.UpdateAccountBalances(ctx, input.AccountID, available, locked); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update wallet balances")
	}
	return entry, nil
}

func applyMovement(available, locked decimal.Decimal, direction enums.LedgerDirection, lockedBucket bool, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	signed := amount
	if direction == enums.LedgerDirectionDebit {
		signed = amount.Neg()
	}
	if lockedBucket {
		return available, locked.Add(signed)
	}
	return available.Add(signed), locked
}

// lockOrCreateAccount takes the account row lock, lazily creating the row on
// first use. A concurrent first-credit race loses on the primary key and
// retries the locked read.
func (s *service) lockOrCreateAccount(ctx context.Context, repo Repository, accountID uuid.UUID, currency enums.Currency) (*models.WalletAccount, error) {
	account, err := repo.FindAccountForUpdate(ctx, accountID)
	if err == nil {
		return account, nil
	}
	if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wallet account")
	}

	fresh := &models.WalletAccount{
		UserID:    accountID,
		Available: decimal.Zero,
		Locked:    decimal.Zero,
		Currency:  currency,
	}
	if err := repo.CreateAccount(ctx, fresh); err != nil {
		if db.IsUniqueViolation(err, "") {
			account, err = repo.FindAccountForUpdate(ctx, accountID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to reload wallet account")
			}
			return account, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create wallet account")
	}
	return fresh, nil
}

func (s *service) currencyOr(currency enums.Currency) enums.Currency {
	if currency != "" {
		return currency
	}
	return enums.Currency(s.cfg.Currency)
}

// LockOrderFunds recomputes the split from the order's stored amounts, then
// credits the vendor earning and the platform share as locked value. The
// keyed entries make a replayed lock impossible to double-write.
func (s *service) LockOrderFunds(ctx context.Context, tx *gorm.DB, order *models.Order) (*LockResult, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order is required")
	}

	if order.PlatformOwned() {
		amount := order.TotalAmount
		_, err := s.Credit(ctx, tx, EntryInput{
			AccountID:      s.cfg.PlatformAccountID,
			Amount:         amount,
			Category:       enums.LedgerCategoryVendorEarning,
			RelatedOrderID: &order.ID,
			Locked:         true,
			IdempotencyKey: lockKey(order.ID, enums.LedgerCategoryVendorEarning),
			Currency:       order.Currency,
		})
		if err != nil {
			return nil, err
		}
		return &LockResult{
			AccountID:     s.cfg.PlatformAccountID,
			VendorAmount:  amount,
			PlatformShare: decimal.Zero,
			Currency:      order.Currency,
		}, nil
	}

	vendorTaxable := order.SubtotalBase.Add(order.ShippingTotal).Add(order.PackingTotal)
	vendorVat := vendorTaxable.Mul(s.cfg.VATRate).Round(2)
	vendorEarning := vendorTaxable.Add(vendorVat)
	platformShare := order.TotalAmount.Sub(vendorEarning)
	if platformShare.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeIntegrity,
			fmt.Sprintf("vendor earning %s exceeds order total %s", vendorEarning.StringFixed(2), order.TotalAmount.StringFixed(2)))
	}

	_, err := s.Credit(ctx, tx, EntryInput{
		AccountID:      *order.VendorID,
		Amount:         vendorEarning,
		Category:       enums.LedgerCategoryVendorEarning,
		RelatedOrderID: &order.ID,
		Locked:         true,
		IdempotencyKey: lockKey(order.ID, enums.LedgerCategoryVendorEarning),
		Currency:       order.Currency,
	})
	if err != nil {
		return nil, err
	}

	if platformShare.IsPositive() {
		_, err = s.Credit(ctx, tx, EntryInput{
			AccountID:      s.cfg.PlatformAccountID,
			Amount:         platformShare,
			Category:       enums.LedgerCategoryCommission,
			RelatedOrderID: &order.ID,
			Locked:         true,
			IdempotencyKey: lockKey(order.ID, enums.LedgerCategoryCommission),
			Currency:       order.Currency,
		})
		if err != nil {
			return nil, err
		}
	}

	return &LockResult{
		AccountID:     *order.VendorID,
		VendorAmount:  vendorEarning,
		PlatformShare: platformShare,
		Currency:      order.Currency,
	}, nil
}

// UnlockByOrder moves every still-locked value of the order from locked to
// available. A second call finds nothing and returns zero.
func (s *service) UnlockByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error) {
	if tx == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "ledger write requires a transaction")
	}
	repo := s.repo.WithTx(tx)

	entries, err := repo.ListLockedByOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load locked entries")
	}
	if len(entries) == 0 {
		return decimal.Zero, nil
	}

	perAccount := make(map[uuid.UUID]decimal.Decimal)
	ids := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		perAccount[entry.AccountID] = perAccount[entry.AccountID].Add(entry.SignedAmount())
		ids = append(ids, entry.ID)
	}

	accountIDs := make([]uuid.UUID, 0, len(perAccount))
	for accountID := range perAccount {
		accountIDs = append(accountIDs, accountID)
	}
	// Stable lock order across concurrent unlockers.
	sort.Slice(accountIDs, func(i, j int) bool {
		return accountIDs[i].String() < accountIDs[j].String()
	})

	total := decimal.Zero
	for _, accountID := range accountIDs {
		net := perAccount[accountID]
		account, err := repo.FindAccountForUpdate(ctx, accountID)
		if err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wallet account")
		}
		if err := repo.UpdateAccountBalances(ctx, accountID, account.Available.Add(net), account.Locked.Sub(net)); err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update wallet balances")
		}
		total = total.Add(net)
	}

	if err := repo.StampUnlocked(ctx, ids, time.Now().UTC()); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to stamp unlocked entries")
	}
	return total, nil
}

// ReverseOrderFunds appends compensating debits for every locked credit of a
// terminated order, zeroing the locked value without touching available.
func (s *service) ReverseOrderFunds(ctx context.Context, tx *gorm.DB, order *models.Order) (decimal.Decimal, error) {
	if order == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "order is required")
	}
	if tx == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "ledger write requires a transaction")
	}
	repo := s.repo.WithTx(tx)

	entries, err := repo.ListLockedByOrder(ctx, order.ID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load locked entries")
	}

	total := decimal.Zero
	for _, entry := range entries {
		if entry.Direction != enums.LedgerDirectionCredit {
			continue
		}
		_, err := s.Debit(ctx, tx, EntryInput{
			AccountID:      entry.AccountID,
			Amount:         entry.Amount,
			Category:       enums.LedgerCategoryRefund,
			RelatedOrderID: &order.ID,
			Locked:         true,
			IdempotencyKey: reversalKey(order.ID, entry.Category),
			Currency:       order.Currency,
		})
		if stdErrors.Is(err, ErrDuplicateEntry) {
			continue
		}
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(entry.Amount)
	}
	return total, nil
}

func (s *service) Balance(ctx context.Context, accountID uuid.UUID) (*BalanceView, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	return s.balance(ctx, s.repo, accountID)
}

func (s *service) BalanceForUpdate(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*BalanceView, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "locked balance read requires a transaction")
	}
	repo := s.repo.WithTx(tx)
	if _, err := s.lockOrCreateAccount(ctx, repo, accountID, s.currencyOr("")); err != nil {
		return nil, err
	}
	return s.balance(ctx, repo, accountID)
}

func (s *service) balance(ctx context.Context, repo Repository, accountID uuid.UUID) (*BalanceView, error) {
	sums, err := repo.SumBalances(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to sum ledger entries")
	}
	currency := enums.Currency(s.cfg.Currency)
	if account, err := repo.FindAccount(ctx, accountID); err == nil {
		currency = account.Currency
	}
	return &BalanceView{
		AccountID: accountID,
		Available: sums.Available,
		Locked:    sums.Locked,
		Currency:  currency,
	}, nil
}

func (s *service) Entries(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*EntryList, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	entries, next, err := s.repo.ListByAccount(ctx, accountID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list ledger entries")
	}
	return &EntryList{Entries: entries, NextCursor: next}, nil
}

func (s *service) Accounts(ctx context.Context) ([]models.WalletAccount, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list wallet accounts")
	}
	return accounts, nil
}

func lockKey(orderID uuid.UUID, category enums.LedgerCategory) string {
	return fmt.Sprintf("%s:lock:%s", orderID, category)
}

func reversalKey(orderID uuid.UUID, category enums.LedgerCategory) string {
	return fmt.Sprintf("%s:reversal:%s", orderID, category)
}
