package router

import (
	"context"

	"github.com/tariqmansouri/vendora-backend/internal/analytics/types"
)

type fakeWriter struct {
	inserted []types.LedgerRevenueRow
}

func (f *fakeWriter) InsertRevenue(_ context.Context, row types.LedgerRevenueRow) error {
	f.inserted = append(f.inserted, row)
	return nil
}
