package controllers

import (
	"net/http"

	"github.com/Dansouza2211/app-ifruits-sub000/api/middleware"
	"github.com/Dansouza2211/app-ifruits-sub000/api/responses"
	"github.com/Dansouza2211/app-ifruits-sub000/api/validators"
	checkoutsvc "github.com/Dansouza2211/app-ifruits-sub000/internal/checkout"
	ordersvc "github.com/Dansouza2211/app-ifruits-sub000/internal/orders"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/logger"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
)

// CheckoutReview prices the active cart with the current draft selections.
func CheckoutReview(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Review(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutsvc.NewReviewView(draft))
	}
}

type setDeliveryOptionRequest struct {
	DeliveryOptionID string `json:"delivery_option_id" validate:"required"`
}

func CheckoutSetDeliveryOption(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setDeliveryOptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.SetDeliveryOption(r.Context(), customerID, payload.DeliveryOptionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutsvc.NewReviewView(draft))
	}
}

type setAddressRequest struct {
	Address types.Address `json:"address" validate:"required"`
}

func CheckoutSetAddress(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.SetAddress(r.Context(), customerID, payload.Address)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutsvc.NewReviewView(draft))
	}
}

type setPaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

func CheckoutSetPaymentMethod(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setPaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		draft, err := svc.SetPaymentMethod(r.Context(), customerID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutsvc.NewReviewView(draft))
	}
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

func CheckoutApplyCoupon(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.ApplyCoupon(r.Context(), customerID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutsvc.NewReviewView(draft))
	}
}

func CheckoutRemoveCoupon(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.RemoveCoupon(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutsvc.NewReviewView(draft))
	}
}

// CheckoutPlaceOrder freezes the draft into an order. Replays are absorbed
// by the idempotency middleware in front of this route.
func CheckoutPlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ordersvc.NewOrderView(order))
	}
}
