package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Dansouza2211/app-ifruits-sub000/api/middleware"
	"github.com/Dansouza2211/app-ifruits-sub000/api/responses"
	"github.com/Dansouza2211/app-ifruits-sub000/api/validators"
	cardsvc "github.com/Dansouza2211/app-ifruits-sub000/internal/paymentmethods"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/logger"
)

type cardResponse struct {
	ID     uuid.UUID `json:"id"`
	Brand  string    `json:"brand"`
	Last4  string    `json:"last4"`
	Holder string    `json:"holder"`
}

func newCardResponse(card models.PaymentCard) cardResponse {
	return cardResponse{
		ID:     card.ID,
		Brand:  card.Brand,
		Last4:  card.Last4,
		Holder: card.Holder,
	}
}

// CardsList returns the customer's registered card references.
func CardsList(svc cardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cards, err := svc.ListCards(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]cardResponse, 0, len(cards))
		for _, card := range cards {
			views = append(views, newCardResponse(card))
		}
		responses.WriteSuccess(w, map[string]any{"cards": views})
	}
}

type registerCardRequest struct {
	Brand  string `json:"brand" validate:"required"`
	Last4  string `json:"last4" validate:"required,len=4"`
	Holder string `json:"holder" validate:"required"`
}

// CardsRegister stores a tokenized card reference. No PAN ever reaches this
// service.
func CardsRegister(svc cardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload registerCardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		card, err := svc.RegisterCard(r.Context(), customerID, cardsvc.RegisterCardInput{
			Brand:  payload.Brand,
			Last4:  payload.Last4,
			Holder: payload.Holder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCardResponse(*card))
	}
}

// CardsRemove deletes one of the customer's card references.
func CardsRemove(svc cardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cardID, err := validators.ParseUUIDParam(r, "cardID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveCard(r.Context(), customerID, cardID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
