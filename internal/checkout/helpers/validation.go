package helpers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
)

// ValidateEligibility checks every cart line against the catalog and vendor
// state. The first offending line aborts the whole conversion; carts are
// converted completely or not at all.
func ValidateEligibility(items []models.CartItem, catalog map[uuid.UUID]models.Product, vendors map[uuid.UUID]models.User) error {
	for _, item := range items {
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("cart line for product %s has no quantity", item.ProductID))
		}

		product, ok := catalog[item.ProductID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeEligibility,
				fmt.Sprintf("product %s is no longer in the catalog", item.ProductID))
		}
		if !product.IsPurchasable() {
			return pkgerrors.New(pkgerrors.CodeEligibility,
				fmt.Sprintf("product %q is not available for purchase", product.Name))
		}

		if product.VendorID == nil {
			continue
		}
		vendor, ok := vendors[*product.VendorID]
		if !ok || vendor.Approval != enums.UserApprovalApproved {
			return pkgerrors.New(pkgerrors.CodeEligibility,
				fmt.Sprintf("vendor for product %q is not approved to sell", product.Name))
		}
	}
	return nil
}

// VendorIDs collects the distinct vendor IDs referenced by the catalog rows
// for the given lines. Platform-owned products contribute nothing.
func VendorIDs(items []models.CartItem, catalog map[uuid.UUID]models.Product) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok || product.VendorID == nil {
			continue
		}
		if _, dup := seen[*product.VendorID]; dup {
			continue
		}
		seen[*product.VendorID] = struct{}{}
		ids = append(ids, *product.VendorID)
	}
	return ids
}

// ProductIDs collects the distinct product IDs referenced by the cart lines.
func ProductIDs(items []models.CartItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
