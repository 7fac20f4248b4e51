// Package helpers holds the pure cart-shaping steps of conversion: line
// consolidation, vendor partitioning and money totals. Everything here is
// side-effect free so the service can compose the steps inside one
// transaction and the tests can drive them with plain fixtures.
package helpers

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
)

// ConsolidateLines merges duplicate product lines into one, summing their
// quantities. Line order follows the first appearance of each product.
func ConsolidateLines(items []models.CartItem) []models.CartItem {
	merged := make([]models.CartItem, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))

	for _, item := range items {
		if at, seen := index[item.ProductID]; seen {
			merged[at].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// PartitionByVendor splits cart lines by the owning vendor of each product.
// Products without a vendor fall under the uuid.Nil key, the platform's own
// partition. The catalog must already cover every referenced product.
func PartitionByVendor(items []models.CartItem, catalog map[uuid.UUID]models.Product) map[uuid.UUID][]models.CartItem {
	partitions := make(map[uuid.UUID][]models.CartItem)
	for _, item := range items {
		key := uuid.Nil
		if product, ok := catalog[item.ProductID]; ok && product.VendorID != nil {
			key = *product.VendorID
		}
		partitions[key] = append(partitions[key], item)
	}
	return partitions
}

// SortedPartitionKeys returns the partition keys in a stable order so order
// numbers and outbox rows are assigned deterministically.
func SortedPartitionKeys(partitions map[uuid.UUID][]models.CartItem) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(partitions))
	for key := range partitions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// OrderTotals carries the money breakdown for one vendor partition. All
// amounts are rounded to two decimal places.
type OrderTotals struct {
	SubtotalBase  decimal.Decimal
	ShippingTotal decimal.Decimal
	PackingTotal  decimal.Decimal
	VATAmount     decimal.Decimal
	Commission    decimal.Decimal
	TotalAmount   decimal.Decimal
}

// ComputeOrderTotals prices one partition from the catalog snapshot. VAT
// applies to goods plus fees; commission is informational and never enters
// the total. Platform-owned partitions carry no commission at all.
func ComputeOrderTotals(items []models.CartItem, catalog map[uuid.UUID]models.Product, vatRate, commissionRate decimal.Decimal, platformOwned bool) OrderTotals {
	subtotal := decimal.Zero
	shipping := decimal.Zero
	packing := decimal.Zero

	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(product.UnitBasePrice.Mul(qty))
		shipping = shipping.Add(product.UnitShippingFee.Mul(qty))
		packing = packing.Add(product.UnitPackingFee.Mul(qty))
	}

	subtotal = subtotal.Round(2)
	shipping = shipping.Round(2)
	packing = packing.Round(2)

	taxable := subtotal.Add(shipping).Add(packing)
	vat := taxable.Mul(vatRate).Round(2)

	commission := decimal.Zero
	if !platformOwned {
		commission = subtotal.Mul(commissionRate).Round(2)
	}

	return OrderTotals{
		SubtotalBase:  subtotal,
		ShippingTotal: shipping,
		PackingTotal:  packing,
		VATAmount:     vat,
		Commission:    commission,
		TotalAmount:   taxable.Add(vat).Round(2),
	}
}
