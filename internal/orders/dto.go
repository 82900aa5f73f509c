package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
)

// OrderLineView exposes a frozen line item with decimal money strings.
type OrderLineView struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	UnitPrice    string    `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	LineSubtotal string    `json:"line_subtotal"`
}

// OrderView is the full order representation returned to the customer.
type OrderView struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	Status          enums.OrderStatus   `json:"status"`
	Currency        enums.Currency      `json:"currency"`
	StoreID         uuid.UUID           `json:"store_id"`
	DeliveryOption  string              `json:"delivery_option"`
	DeliveryLabel   string              `json:"delivery_label"`
	DeliveryAddress types.Address       `json:"delivery_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	Quote           types.QuoteView     `json:"quote"`
	DeliveryCode    string              `json:"delivery_code,omitempty"`
	Items           []OrderLineView     `json:"items"`
	PlacedAt        time.Time           `json:"placed_at"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CanceledAt      *time.Time          `json:"canceled_at,omitempty"`
}

// OrderSummaryView is the compact representation used in listings.
type OrderSummaryView struct {
	ID          uuid.UUID         `json:"id"`
	OrderNumber string            `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	Total       string            `json:"total"`
	TotalItems  int               `json:"total_items"`
	PlacedAt    time.Time         `json:"placed_at"`
}

// OrderListView wraps paginated summaries plus the next page cursor.
type OrderListView struct {
	Orders     []OrderSummaryView `json:"orders"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// NewOrderView maps a persisted order to its API representation. The
// delivery code is only surfaced while the order is still in flight.
func NewOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		Currency:        order.Currency,
		StoreID:         order.StoreID,
		DeliveryOption:  order.DeliveryOptionID,
		DeliveryLabel:   order.DeliveryLabel,
		DeliveryAddress: order.DeliveryAddress,
		PaymentMethod:   order.PaymentMethod,
		CouponCode:      order.CouponCode,
		Quote:           order.Quote().View(),
		Items:           make([]OrderLineView, 0, len(order.Items)),
		PlacedAt:        order.PlacedAt,
		DeliveredAt:     order.DeliveredAt,
		CanceledAt:      order.CanceledAt,
	}
	if !order.Status.IsTerminal() {
		view.DeliveryCode = order.DeliveryCode
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, OrderLineView{
			ProductID:    item.ProductID,
			Name:         item.Name,
			UnitPrice:    types.Cents(item.UnitPriceCents).String(),
			Quantity:     item.Quantity,
			LineSubtotal: types.Cents(item.LineSubtotalCents).String(),
		})
	}
	return view
}

// NewOrderListView maps a service page to its API representation.
func NewOrderListView(page *OrderPage) OrderListView {
	view := OrderListView{
		Orders:     make([]OrderSummaryView, 0, len(page.Orders)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Orders {
		order := &page.Orders[i]
		totalItems := 0
		for _, item := range order.Items {
			totalItems += item.Quantity
		}
		view.Orders = append(view.Orders, OrderSummaryView{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			Status:      order.Status,
			Total:       types.Cents(order.TotalCents).String(),
			TotalItems:  totalItems,
			PlacedAt:    order.PlacedAt,
		})
	}
	return view
}
