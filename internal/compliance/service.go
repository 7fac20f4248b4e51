package compliance

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/pkg/config"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
)

type cartLoader interface {
	FindCartForBuyer(ctx context.Context, cartID, buyerID uuid.UUID) (*models.CartRecord, error)
}

type buyerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ApprovedCategories(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error)
}

type productLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Decision is the routing verdict for a cart. A request decision means manual
// admin approval gates the checkout; the reasons list every rule that fired.
type Decision struct {
	Type    enums.OrderType `json:"type"`
	Reasons []string        `json:"reasons"`
}

// Service evaluates whether a cart may proceed straight to payment. The
// evaluation is side-effect free, so the storefront can call it repeatedly and
// conversion re-runs it inside its own transaction.
type Service interface {
	Evaluate(ctx context.Context, buyerID, cartID uuid.UUID) (*Decision, error)
}

type service struct {
	carts    cartLoader
	buyers   buyerLoader
	products productLoader
	cfg      config.EngineConfig
}

// NewService builds the compliance evaluator.
func NewService(carts cartLoader, buyers buyerLoader, products productLoader, cfg config.EngineConfig) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if buyers == nil {
		return nil, fmt.Errorf("buyer loader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{carts: carts, buyers: buyers, products: products, cfg: cfg}, nil
}

func (s *service) Evaluate(ctx context.Context, buyerID, cartID uuid.UUID) (*Decision, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}

	record, err := s.carts.FindCartForBuyer(ctx, cartID, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	buyer, err := s.buyers.FindByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}

	var reasons []string
	if buyer.Approval != enums.UserApprovalApproved {
		reasons = append(reasons, fmt.Sprintf("buyer approval status is %s", buyer.Approval))
	}

	productIDs := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	catalog, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	approved, err := s.buyers.ApprovedCategories(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category approvals")
	}

	reasons = append(reasons, unapprovedCategoryReasons(record.Items, catalog, approved)...)

	if subtotal := cartSubtotal(record.Items, catalog); subtotal.GreaterThanOrEqual(s.cfg.HighValueThreshold) {
		reasons = append(reasons, fmt.Sprintf("cart subtotal %s meets the high-value threshold", subtotal.StringFixed(2)))
	}

	decision := &Decision{Type: enums.OrderTypeDirect, Reasons: reasons}
	if len(reasons) > 0 {
		decision.Type = enums.OrderTypeRequest
	}
	return decision, nil
}

// unapprovedCategoryReasons reports each distinct cart category that lacks an
// approval row, in stable order so repeated evaluations read identically.
func unapprovedCategoryReasons(items []models.CartItem, catalog map[uuid.UUID]models.Product, approved map[string]struct{}) []string {
	missing := map[string]struct{}{}
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			continue
		}
		if _, ok := approved[product.Category]; !ok {
			missing[product.Category] = struct{}{}
		}
	}

	categories := make([]string, 0, len(missing))
	for category := range missing {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	reasons := make([]string, 0, len(categories))
	for _, category := range categories {
		reasons = append(reasons, fmt.Sprintf("category %s requires approval", category))
	}
	return reasons
}

// cartSubtotal sums sell price by quantity, the pre-VAT pre-fee figure the
// high-value rule compares against.
func cartSubtotal(items []models.CartItem, catalog map[uuid.UUID]models.Product) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			continue
		}
		line := product.UnitSellPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	return subtotal
}
