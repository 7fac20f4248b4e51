package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/internal/ledger"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/metrics"
)

func TestWalletReconciliationJobFlagsDrift(t *testing.T) {
	clean := uuid.New()
	shortAvailable := uuid.New()
	staleLocked := uuid.New()
	repo := &fakeWalletAuditRepo{
		accounts: []models.WalletAccount{
			{UserID: clean, Available: decimal.NewFromInt(100), Locked: decimal.NewFromInt(20)},
			{UserID: shortAvailable, Available: decimal.NewFromInt(55), Locked: decimal.Zero},
			{UserID: staleLocked, Available: decimal.NewFromInt(10), Locked: decimal.NewFromInt(30)},
		},
		sums: map[uuid.UUID]ledger.BalanceSums{
			clean:          {Available: decimal.RequireFromString("100.00"), Locked: decimal.RequireFromString("20.00")},
			shortAvailable: {Available: decimal.NewFromInt(60), Locked: decimal.Zero},
			staleLocked:    {Available: decimal.NewFromInt(10), Locked: decimal.Zero},
		},
	}
	reg := prometheus.NewRegistry()
	job := newWalletReconciliationJob(t, repo, metrics.NewEngineMetrics(reg))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if repo.sumCalls != 3 {
		t.Fatalf("expected every account summed, got %d", repo.sumCalls)
	}
	if got := walletDriftCount(t, reg); got != 2 {
		t.Fatalf("expected 2 drifted accounts, got %f", got)
	}
}

func TestWalletReconciliationJobPassesCleanLedger(t *testing.T) {
	accountID := uuid.New()
	repo := &fakeWalletAuditRepo{
		accounts: []models.WalletAccount{
			{UserID: accountID, Available: decimal.RequireFromString("241.50"), Locked: decimal.Zero},
		},
		sums: map[uuid.UUID]ledger.BalanceSums{
			accountID: {Available: decimal.RequireFromString("241.5"), Locked: decimal.Zero},
		},
	}
	reg := prometheus.NewRegistry()
	job := newWalletReconciliationJob(t, repo, metrics.NewEngineMetrics(reg))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := walletDriftCount(t, reg); got != 0 {
		t.Fatalf("expected no drift, got %f", got)
	}
}

func TestWalletReconciliationJobSweepsPastBrokenAccount(t *testing.T) {
	broken := uuid.New()
	drifted := uuid.New()
	repo := &fakeWalletAuditRepo{
		accounts: []models.WalletAccount{
			{UserID: broken, Available: decimal.NewFromInt(5), Locked: decimal.Zero},
			{UserID: drifted, Available: decimal.NewFromInt(40), Locked: decimal.Zero},
		},
		sumErrs: map[uuid.UUID]error{broken: errors.New("boom")},
		sums: map[uuid.UUID]ledger.BalanceSums{
			drifted: {Available: decimal.NewFromInt(41), Locked: decimal.Zero},
		},
	}
	reg := prometheus.NewRegistry()
	job := newWalletReconciliationJob(t, repo, metrics.NewEngineMetrics(reg))

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error from broken account")
	}
	if repo.sumCalls != 2 {
		t.Fatalf("expected sweep to reach both accounts, got %d calls", repo.sumCalls)
	}
	if got := walletDriftCount(t, reg); got != 1 {
		t.Fatalf("expected drift recorded on healthy account, got %f", got)
	}
}

func TestWalletReconciliationJobPropagatesError(t *testing.T) {
	repo := &fakeWalletAuditRepo{listErr: errors.New("boom")}
	job := newWalletReconciliationJob(t, repo, nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	repo = &fakeWalletAuditRepo{
		accounts: []models.WalletAccount{{UserID: uuid.New()}},
		sumErr:   errors.New("boom"),
	}
	job = newWalletReconciliationJob(t, repo, nil)
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newWalletReconciliationJob(t *testing.T, repo *fakeWalletAuditRepo, engine *metrics.EngineMetrics) Job {
	t.Helper()
	job, err := NewWalletReconciliationJob(WalletReconciliationJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Ledger:  repo,
		Metrics: engine,
	})
	if err != nil {
		t.Fatalf("NewWalletReconciliationJob: %v", err)
	}
	return job
}

func walletDriftCount(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "vendora_engine_wallet_drift_total" {
			for _, metric := range mf.GetMetric() {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

type fakeWalletAuditRepo struct {
	accounts []models.WalletAccount
	sums     map[uuid.UUID]ledger.BalanceSums
	sumErrs  map[uuid.UUID]error
	listErr  error
	sumErr   error
	sumCalls int
}

func (f *fakeWalletAuditRepo) ListAccounts(context.Context) ([]models.WalletAccount, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.accounts, nil
}

func (f *fakeWalletAuditRepo) SumBalances(_ context.Context, accountID uuid.UUID) (ledger.BalanceSums, error) {
	f.sumCalls++
	if f.sumErr != nil {
		return ledger.BalanceSums{}, f.sumErr
	}
	if err := f.sumErrs[accountID]; err != nil {
		return ledger.BalanceSums{}, err
	}
	return f.sums[accountID], nil
}
