package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/types"
)

// OrderResponse is the wire shape of one order. Storage models carry no JSON
// tags, so every controller maps through here.
type OrderResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderNumber      string          `json:"order_number"`
	GroupNumber      string          `json:"group_number"`
	CartID           uuid.UUID       `json:"cart_id"`
	BuyerID          uuid.UUID       `json:"buyer_id"`
	VendorID         *uuid.UUID      `json:"vendor_id,omitempty"`
	Type             string          `json:"type"`
	OrderStatus      string          `json:"order_status"`
	PaymentStatus    *string         `json:"payment_status,omitempty"`
	ShipmentStatus   *string         `json:"shipment_status,omitempty"`
	SubtotalBase     decimal.Decimal `json:"subtotal_base"`
	ShippingTotal    decimal.Decimal `json:"shipping_total"`
	PackingTotal     decimal.Decimal `json:"packing_total"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Currency         string          `json:"currency"`
	ShippingAddress  *types.Address  `json:"shipping_address,omitempty"`
	TrackingNumber   *string         `json:"tracking_number,omitempty"`
	Items            []ItemResponse  `json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ItemResponse is the wire shape of one order line.
type ItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	UnitBasePrice   decimal.Decimal `json:"unit_base_price"`
	UnitSellPrice   decimal.Decimal `json:"unit_sell_price"`
	UnitShippingFee decimal.Decimal `json:"unit_shipping_fee"`
	UnitPackingFee  decimal.Decimal `json:"unit_packing_fee"`
}

// HistoryResponse is the wire shape of one status history row.
type HistoryResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrderStatus    string     `json:"order_status"`
	PaymentStatus  *string    `json:"payment_status,omitempty"`
	ShipmentStatus *string    `json:"shipment_status,omitempty"`
	ActorType      string     `json:"actor_type"`
	ActorID        *uuid.UUID `json:"actor_id,omitempty"`
	Note           *string    `json:"note,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ListResponse is one page of orders plus the next-page cursor.
type ListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// NewOrderResponse maps a stored order onto the wire shape.
func NewOrderResponse(order *models.Order) OrderResponse {
	if order == nil {
		return OrderResponse{}
	}
	items := make([]ItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, newItemResponse(item))
	}
	return OrderResponse{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		GroupNumber:      order.GroupNumber,
		CartID:           order.CartID,
		BuyerID:          order.BuyerID,
		VendorID:         order.VendorID,
		Type:             string(order.Type),
		OrderStatus:      string(order.OrderStatus),
		PaymentStatus:    statusString(order.PaymentStatus),
		ShipmentStatus:   statusString(order.ShipmentStatus),
		SubtotalBase:     order.SubtotalBase,
		ShippingTotal:    order.ShippingTotal,
		PackingTotal:     order.PackingTotal,
		VATAmount:        order.VATAmount,
		CommissionAmount: order.CommissionAmount,
		TotalAmount:      order.TotalAmount,
		Currency:         string(order.Currency),
		ShippingAddress:  order.ShippingAddress,
		TrackingNumber:   order.TrackingNumber,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

// NewListResponse maps one page of stored orders.
func NewListResponse(orders []models.Order, nextCursor string) ListResponse {
	mapped := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		mapped = append(mapped, NewOrderResponse(&orders[i]))
	}
	return ListResponse{Orders: mapped, NextCursor: nextCursor}
}

// NewHistoryResponse maps stored history rows onto the wire shape.
func NewHistoryResponse(entries []models.OrderStatusHistory) []HistoryResponse {
	mapped := make([]HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		mapped = append(mapped, HistoryResponse{
			ID:             entry.ID,
			OrderStatus:    string(entry.OrderStatus),
			PaymentStatus:  statusString(entry.PaymentStatus),
			ShipmentStatus: statusString(entry.ShipmentStatus),
			ActorType:      string(entry.ActorType),
			ActorID:        entry.ActorID,
			Note:           entry.Note,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return mapped
}

func newItemResponse(item models.OrderItem) ItemResponse {
	return ItemResponse{
		ID:              item.ID,
		ProductID:       item.ProductID,
		Name:            item.Name,
		Quantity:        item.Quantity,
		UnitBasePrice:   item.UnitBasePrice,
		UnitSellPrice:   item.UnitSellPrice,
		UnitShippingFee: item.UnitShippingFee,
		UnitPackingFee:  item.UnitPackingFee,
	}
}

func statusString[T ~string](value *T) *string {
	if value == nil {
		return nil
	}
	s := string(*value)
	return &s
}
