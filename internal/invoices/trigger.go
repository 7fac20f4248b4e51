package invoices

import (
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// Action is one invoice side effect requested by an order transition.
type Action string

const (
	ActionGenerateCustomerInvoice Action = "generate_customer_invoice"
	ActionGenerateVendorInvoice   Action = "generate_vendor_invoice"
	ActionMarkCustomerInvoicePaid Action = "mark_customer_invoice_paid"
	ActionMarkVendorInvoicePaid   Action = "mark_vendor_invoice_paid"
)

// Evaluate is a pure decision over the before/after pair of one order. It
// names the invoice effects the transition requires; Apply makes each of them
// idempotent against what already exists, so Evaluate can fire on every
// settling order of a group without risking duplicates.
func Evaluate(prev, next *models.Order) []Action {
	if prev == nil || next == nil {
		return nil
	}

	var actions []Action
	if !settled(prev) && settled(next) {
		actions = append(actions,
			ActionGenerateCustomerInvoice,
			ActionMarkCustomerInvoicePaid,
		)
		if next.VendorID != nil {
			actions = append(actions, ActionGenerateVendorInvoice)
		}
	}
	if !prev.IsDelivered() && next.IsDelivered() && next.VendorID != nil {
		actions = append(actions, ActionMarkVendorInvoicePaid)
	}
	return actions
}

// settled means the money is final: the admin accepted the order and the
// gateway confirmed payment.
func settled(order *models.Order) bool {
	return order.OrderStatus == enums.OrderStatusApproved && order.IsPaid()
}
