package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Dansouza2211/app-ifruits-sub000/api/responses"
	"github.com/Dansouza2211/app-ifruits-sub000/api/validators"
	catalogsvc "github.com/Dansouza2211/app-ifruits-sub000/internal/catalog"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/logger"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
)

type storeResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type productResponse struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	WeightGrams *int      `json:"weight_grams,omitempty"`
}

type deliveryOptionResponse struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	EtaMinutesMin int    `json:"eta_minutes_min"`
	EtaMinutesMax int    `json:"eta_minutes_max"`
	Fee           string `json:"fee"`
}

func newProductResponse(product models.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		StoreID:     product.StoreID,
		Name:        product.Name,
		Price:       types.Cents(product.PriceCents).String(),
		WeightGrams: product.WeightGrams,
	}
}

// StoresList returns active stores, newest first.
func StoresList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListStores(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stores := make([]storeResponse, 0, len(page.Stores))
		for _, store := range page.Stores {
			stores = append(stores, storeResponse{ID: store.ID, Name: store.Name})
		}
		responses.WriteSuccess(w, map[string]any{
			"stores": stores,
			"page":   types.Page{NextCursor: page.NextCursor, HasMore: page.HasMore},
		})
	}
}

// StoreProductsList returns a store's active products.
func StoreProductsList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.ParseUUIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProductsByStore(r.Context(), storeID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products := make([]productResponse, 0, len(page.Products))
		for _, product := range page.Products {
			products = append(products, newProductResponse(product))
		}
		responses.WriteSuccess(w, map[string]any{
			"products": products,
			"page":     types.Page{NextCursor: page.NextCursor, HasMore: page.HasMore},
		})
	}
}

// DeliveryOptionsList returns the selectable shipping tiers, cheapest first.
func DeliveryOptionsList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := svc.ListDeliveryOptions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]deliveryOptionResponse, 0, len(options))
		for _, option := range options {
			views = append(views, deliveryOptionResponse{
				ID:            option.ID,
				Label:         option.Label,
				EtaMinutesMin: option.EtaMinutesMin,
				EtaMinutesMax: option.EtaMinutesMax,
				Fee:           types.Cents(option.FeeCents).String(),
			})
		}
		responses.WriteSuccess(w, map[string]any{"delivery_options": views})
	}
}
