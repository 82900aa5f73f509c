package outbox

import (
	"github.com/google/uuid"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
)

// OrderPlacedPayload is the v1 data body of order.placed events.
type OrderPlacedPayload struct {
	OrderID       uuid.UUID           `json:"orderId"`
	OrderNumber   string              `json:"orderNumber"`
	CustomerID    uuid.UUID           `json:"customerId"`
	StoreID       uuid.UUID           `json:"storeId"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	TotalCents    int64               `json:"totalCents"`
	Currency      enums.Currency      `json:"currency"`
}

// OrderStatusChangedPayload is the v1 data body of order.advanced,
// order.delivered and order.canceled events.
type OrderStatusChangedPayload struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	CustomerID  uuid.UUID         `json:"customerId"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to"`
	Reason      string            `json:"reason,omitempty"`
}

// CartExpiredPayload is the v1 data body of cart.expired events.
type CartExpiredPayload struct {
	CartID     uuid.UUID `json:"cartId"`
	CustomerID uuid.UUID `json:"customerId"`
	ItemCount  int       `json:"itemCount"`
}
