package enums

import "fmt"

// LedgerCategory labels what a ledger entry represents.
type LedgerCategory string

const (
	LedgerCategoryVendorEarning LedgerCategory = "vendor_earning"
	LedgerCategoryCommission    LedgerCategory = "commission"
	LedgerCategoryPayout        LedgerCategory = "payout"
	LedgerCategoryRefund        LedgerCategory = "refund"
)

var validLedgerCategories = []LedgerCategory{
	LedgerCategoryVendorEarning,
	LedgerCategoryCommission,
	LedgerCategoryPayout,
	LedgerCategoryRefund,
}

// String implements fmt.Stringer.
func (l LedgerCategory) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerCategory.
func (l LedgerCategory) IsValid() bool {
	for _, candidate := range validLedgerCategories {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLedgerCategory converts raw input into a LedgerCategory.
func ParseLedgerCategory(value string) (LedgerCategory, error) {
	for _, candidate := range validLedgerCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger category %q", value)
}

// LedgerDirection tags an entry as a credit or debit; amounts stay positive.
type LedgerDirection string

const (
	LedgerDirectionCredit LedgerDirection = "credit"
	LedgerDirectionDebit  LedgerDirection = "debit"
)

var validLedgerDirections = []LedgerDirection{
	LedgerDirectionCredit,
	LedgerDirectionDebit,
}

// String implements fmt.Stringer.
func (l LedgerDirection) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerDirection.
func (l LedgerDirection) IsValid() bool {
	for _, candidate := range validLedgerDirections {
		if candidate == l {
			return true
		}
	}
	return false
}

// Sign returns +1 for credits and -1 for debits, 0 for unknown values.
func (l LedgerDirection) Sign() int {
	switch l {
	case LedgerDirectionCredit:
		return 1
	case LedgerDirectionDebit:
		return -1
	default:
		return 0
	}
}

// ParseLedgerDirection converts raw input into a LedgerDirection.
func ParseLedgerDirection(value string) (LedgerDirection, error) {
	for _, candidate := range validLedgerDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger direction %q", value)
}
