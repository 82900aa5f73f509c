package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Dansouza2211/app-ifruits-sub000/api/middleware"
	"github.com/Dansouza2211/app-ifruits-sub000/api/responses"
	"github.com/Dansouza2211/app-ifruits-sub000/api/validators"
	cartsvc "github.com/Dansouza2211/app-ifruits-sub000/internal/cart"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/logger"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
)

type cartItemResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	UnitPrice    string    `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	LineSubtotal string    `json:"line_subtotal"`
}

type cartResponse struct {
	ID         uuid.UUID          `json:"id"`
	StoreID    *uuid.UUID         `json:"store_id,omitempty"`
	Status     string             `json:"status"`
	Items      []cartItemResponse `json:"items"`
	Subtotal   string             `json:"subtotal"`
	CouponCode *string            `json:"coupon_code,omitempty"`
	ValidUntil time.Time          `json:"valid_until"`
}

func newCartResponse(record *models.CartRecord) cartResponse {
	resp := cartResponse{
		ID:         record.ID,
		StoreID:    record.StoreID,
		Status:     string(record.Status),
		Items:      make([]cartItemResponse, 0, len(record.Items)),
		Subtotal:   types.Cents(record.SubtotalCents()).String(),
		CouponCode: record.CouponCode,
		ValidUntil: record.ValidUntil,
	}
	for _, item := range record.Items {
		resp.Items = append(resp.Items, cartItemResponse{
			ProductID:    item.ProductID,
			Name:         item.Name,
			UnitPrice:    types.Cents(item.UnitPriceCents).String(),
			Quantity:     item.Quantity,
			LineSubtotal: types.Cents(item.LineSubtotalCents).String(),
		})
	}
	return resp
}

// CartGet returns the customer's active cart, creating an empty one on
// first access.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetActiveCart(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1"`
}

// CartAddItem adds a product line or increments an existing one.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddItem(r.Context(), customerID, cartsvc.AddItemInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(record))
	}
}

// CartIncreaseItem bumps a line's quantity by one.
func CartIncreaseItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc.IncreaseItem, logg)
}

// CartDecreaseItem lowers a line's quantity by one, removing the line when
// it would drop below one.
func CartDecreaseItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc.DecreaseItem, logg)
}

// CartRemoveItem deletes a line regardless of its quantity.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc.RemoveItem, logg)
}

func cartLineHandler(op func(ctx context.Context, customerID, productID uuid.UUID) (*models.CartRecord, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := op(r.Context(), customerID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartClear empties the cart and resets its store binding and coupon.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Clear(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}
