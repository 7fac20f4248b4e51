package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/tariqmansouri/vendora-backend/internal/ledger"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/metrics"
)

type WalletReconciliationJobParams struct {
	Logger  *logger.Logger
	Ledger  walletAuditRepo
	Metrics *metrics.EngineMetrics
}

type walletAuditRepo interface {
	ListAccounts(ctx context.Context) ([]models.WalletAccount, error)
	SumBalances(ctx context.Context, accountID uuid.UUID) (ledger.BalanceSums, error)
}

func NewWalletReconciliationJob(params WalletReconciliationJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &walletReconciliationJob{
		logg:    params.Logger,
		ledger:  params.Ledger,
		metrics: params.Metrics,
	}, nil
}

type walletReconciliationJob struct {
	logg    *logger.Logger
	ledger  walletAuditRepo
	metrics *metrics.EngineMetrics
}

func (j *walletReconciliationJob) Name() string { return "wallet-reconciliation" }

// Run recomputes each account's balances from its ledger entries and compares
// them to the materialized row. Drift is reported, never repaired. Per-account
// failures are collected and returned after the sweep finishes.
func (j *walletReconciliationJob) Run(ctx context.Context) error {
	accounts, err := j.ledger.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list wallet accounts: %w", err)
	}
	var errs error
	drifted := 0
	for _, account := range accounts {
		sums, err := j.ledger.SumBalances(ctx, account.UserID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("sum ledger entries for %s: %w", account.UserID, err))
			continue
		}
		if account.Available.Equal(sums.Available) && account.Locked.Equal(sums.Locked) {
			continue
		}
		drifted++
		j.metrics.IncWalletDrift()
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"account_id":       account.UserID,
			"stored_available": account.Available,
			"stored_locked":    account.Locked,
			"ledger_available": sums.Available,
			"ledger_locked":    sums.Locked,
		})
		j.logg.Error(logCtx, "wallet balance drifted from ledger sums",
			pkgerrors.New(pkgerrors.CodeIntegrity, fmt.Sprintf("wallet %s does not match its ledger entries", account.UserID)))
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"accounts_checked": len(accounts),
		"accounts_drifted": drifted,
	})
	j.logg.Info(logCtx, "wallet reconciliation sweep complete")
	return errs
}
