package types

// Quote is the computed, not-yet-committed price breakdown for a cart plus a
// delivery selection. It is derived state: recomputed whenever any input
// changes and never stored apart from the frozen copy inside an order.
type Quote struct {
	Subtotal    Cents `json:"-"`
	DeliveryFee Cents `json:"-"`
	ServiceFee  Cents `json:"-"`
	Discount    Cents `json:"-"`
	Total       Cents `json:"-"`
}

// QuoteView is the decimal rendering returned to API callers.
type QuoteView struct {
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	ServiceFee  string `json:"service_fee"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
}

// View renders the quote with two decimal places per field.
func (q Quote) View() QuoteView {
	return QuoteView{
		Subtotal:    q.Subtotal.String(),
		DeliveryFee: q.DeliveryFee.String(),
		ServiceFee:  q.ServiceFee.String(),
		Discount:    q.Discount.String(),
		Total:       q.Total.String(),
	}
}
