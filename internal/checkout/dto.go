package checkout

import (
	"github.com/google/uuid"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
)

// Draft is the priced checkout state assembled from the active cart.
type Draft struct {
	Cart           *models.CartRecord
	DeliveryOption *models.DeliveryOption
	Coupon         *models.Coupon
	Quote          types.Quote
}

// DraftItemView is a cart line in the review payload.
type DraftItemView struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	UnitPrice    string    `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	LineSubtotal string    `json:"line_subtotal"`
}

// DeliveryOptionView describes the selected shipping tier.
type DeliveryOptionView struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	EtaMinutesMin int    `json:"eta_minutes_min"`
	EtaMinutesMax int    `json:"eta_minutes_max"`
	Fee           string `json:"fee"`
}

// ReviewView is the API representation of a priced draft.
type ReviewView struct {
	CartID         uuid.UUID            `json:"cart_id"`
	StoreID        *uuid.UUID           `json:"store_id,omitempty"`
	Items          []DraftItemView      `json:"items"`
	DeliveryOption *DeliveryOptionView  `json:"delivery_option,omitempty"`
	Address        *types.Address       `json:"address,omitempty"`
	PaymentMethod  *enums.PaymentMethod `json:"payment_method,omitempty"`
	CouponCode     *string              `json:"coupon_code,omitempty"`
	Quote          types.QuoteView      `json:"quote"`
	ReadyToPlace   bool                 `json:"ready_to_place"`
}

// NewReviewView maps a draft to its API representation.
func NewReviewView(draft *Draft) ReviewView {
	cart := draft.Cart
	view := ReviewView{
		CartID:        cart.ID,
		StoreID:       cart.StoreID,
		Items:         make([]DraftItemView, 0, len(cart.Items)),
		Address:       cart.DeliveryAddress,
		PaymentMethod: cart.PaymentMethod,
		CouponCode:    cart.CouponCode,
		Quote:         draft.Quote.View(),
	}
	for _, item := range cart.Items {
		view.Items = append(view.Items, DraftItemView{
			ProductID:    item.ProductID,
			Name:         item.Name,
			UnitPrice:    types.Cents(item.UnitPriceCents).String(),
			Quantity:     item.Quantity,
			LineSubtotal: types.Cents(item.LineSubtotalCents).String(),
		})
	}
	if draft.DeliveryOption != nil {
		view.DeliveryOption = &DeliveryOptionView{
			ID:            draft.DeliveryOption.ID,
			Label:         draft.DeliveryOption.Label,
			EtaMinutesMin: draft.DeliveryOption.EtaMinutesMin,
			EtaMinutesMax: draft.DeliveryOption.EtaMinutesMax,
			Fee:           types.Cents(draft.DeliveryOption.FeeCents).String(),
		}
	}
	view.ReadyToPlace = len(cart.Items) > 0 &&
		cart.DeliveryOptionID != nil &&
		cart.DeliveryAddress != nil &&
		cart.PaymentMethod != nil
	return view
}
