package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/cloudkitchen/storefront/internal/checkout"
	"github.com/cloudkitchen/storefront/internal/order"
)

type CartLineRequest struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name" validate:"required"`
	UnitPrice int64  `json:"unit_price" validate:"min=0"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

// QuoteRequest tolerates an empty cart: the storefront quotes empty carts
// for the free-delivery hint.
type QuoteRequest struct {
	Items []CartLineRequest `json:"items" validate:"dive"`
}

type CheckoutRequest struct {
	Customer CustomerRequest   `json:"customer" validate:"required"`
	Items    []CartLineRequest `json:"items" validate:"dive"`
}

// CheckoutHandler handles cart pricing and checkout submission.
type CheckoutHandler struct {
	svc      order.Service
	calc     *checkout.Calculator
	validate *validator.Validate
}

func NewCheckoutHandler(svc order.Service, calc *checkout.Calculator) *CheckoutHandler {
	return &CheckoutHandler{
		svc:      svc,
		calc:     calc,
		validate: validator.New(),
	}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Post("/checkout/quote", h.handleQuote)
	router.Post("/checkout", h.handleCheckout)
}

func (h *CheckoutHandler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var requestPayload QuoteRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	summary, err := h.calc.Quote(toCartLines(requestPayload.Items))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *CheckoutHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var requestPayload CheckoutRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	result, err := h.svc.Checkout(r.Context(), order.Customer{
		Name:    requestPayload.Customer.Name,
		Phone:   requestPayload.Customer.Phone,
		Address: requestPayload.Customer.Address,
	}, toCartLines(requestPayload.Items))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to submit checkout via service")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func toCartLines(items []CartLineRequest) []checkout.Line {
	lines := make([]checkout.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, checkout.Line{
			ItemID:    item.ItemID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
