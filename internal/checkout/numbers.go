package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
)

const (
	defaultNumberDigits = 8

	// maxNumberAttempts bounds collision retries. The number space is nine
	// orders of magnitude wider than any realistic order volume, so hitting
	// this limit means the random source is broken, not the table full.
	maxNumberAttempts = 25
)

// generateOrderNumber draws fixed-width numeric strings until taken reports a
// free one. Numbers never start with zero so their width survives any
// string-to-int round trip in downstream systems.
func generateOrderNumber(ctx context.Context, digits int, taken func(ctx context.Context, candidate string) (bool, error)) (string, error) {
	if digits < 1 || digits > 18 {
		digits = defaultNumberDigits
	}

	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	span := big.NewInt(low * 9)

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return "", fmt.Errorf("draw order number: %w", err)
		}
		candidate := fmt.Sprintf("%d", n.Int64()+low)

		inUse, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
	}

	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a free order number")
}
