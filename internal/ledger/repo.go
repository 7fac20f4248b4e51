package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/pkg/db"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

// BalanceSums are the two buckets recomputed from the entries themselves.
// Locked covers entries that are locked and not yet unlocked; everything else
// counts toward available.
type BalanceSums struct {
	Available decimal.Decimal
	Locked    decimal.Decimal
}

// Repository manages persistence for wallet accounts and ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListLockedByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error)
	StampUnlocked(ctx context.Context, entryIDs []uuid.UUID, at time.Time) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error)
	SumBalances(ctx context.Context, accountID uuid.UUID) (BalanceSums, error)

	FindAccount(ctx context.Context, accountID uuid.UUID) (*models.WalletAccount, error)
	FindAccountForUpdate(ctx context.Context, accountID uuid.UUID) (*models.WalletAccount, error)
	CreateAccount(ctx context.Context, account *models.WalletAccount) error
	UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, available, locked decimal.Decimal) error
	ListAccounts(ctx context.Context) ([]models.WalletAccount, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListLockedByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("related_order_id = ? AND locked = ? AND unlocked_at IS NULL", orderID, true).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) StampUnlocked(ctx context.Context, entryIDs []uuid.UUID, at time.Time) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("id IN ?", entryIDs).
		Update("unlocked_at", at).Error
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	buffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("account_id = ?", accountID)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.LedgerEntry
	err = query.
		Order("created_at DESC, id DESC").
		Limit(buffer).
		Find(&entries).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(entries) > pageSize {
		entries = entries[:pageSize]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}

func (r *repository) SumBalances(ctx context.Context, accountID uuid.UUID) (BalanceSums, error) {
	var sums BalanceSums
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select(`
COALESCE(SUM(CASE WHEN locked = true AND unlocked_at IS NULL THEN 0 ELSE (CASE WHEN direction = 'credit' THEN amount ELSE -amount END) END), 0) AS available,
COALESCE(SUM(CASE WHEN locked = true AND unlocked_at IS NULL THEN (CASE WHEN direction = 'credit' THEN amount ELSE -amount END) ELSE 0 END), 0) AS locked`).
		Where("account_id = ?", accountID).
		Scan(&sums).Error
	return sums, err
}

func (r *repository) FindAccount(ctx context.Context, accountID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", accountID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindAccountForUpdate(ctx context.Context, accountID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("user_id = ?", accountID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) CreateAccount(ctx context.Context, account *models.WalletAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, available, locked decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("user_id = ?", accountID).
		Updates(map[string]any{"available": available, "locked": locked}).Error
}

func (r *repository) ListAccounts(ctx context.Context) ([]models.WalletAccount, error) {
	var accounts []models.WalletAccount
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}
