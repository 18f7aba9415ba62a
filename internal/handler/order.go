package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cloudkitchen/storefront/internal/order"
)

type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

type OrderItemRequest struct {
	Name      string `json:"name" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	UnitPrice int64  `json:"unit_price" validate:"min=0"`
}

type CreateOrderRequest struct {
	Customer CustomerRequest    `json:"customer" validate:"required"`
	Items    []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type PaymentCallbackRequest struct {
	Status        string `json:"status" validate:"required"`
	TransactionID string `json:"transaction_id"`
}

type ListOrdersResponse struct {
	Orders []order.Order `json:"orders"`
	Count  int           `json:"count"`
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrderByID)
	router.Patch("/orders/{id}/status", h.handleUpdateStatus)
	router.Post("/orders/{id}/payment", h.handlePaymentCallback)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create order request")
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	items := make([]order.OrderItem, 0, len(requestPayload.Items))
	for _, item := range requestPayload.Items {
		items = append(items, order.OrderItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	createdOrder, err := h.svc.CreateOrder(r.Context(), order.Customer{
		Name:    requestPayload.Customer.Name,
		Phone:   requestPayload.Customer.Phone,
		Address: requestPayload.Customer.Address,
	}, items)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create order via service")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, createdOrder)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	filter := order.ListFilter{
		Query: r.URL.Query().Get("q"),
	}

	if rawStatus := r.URL.Query().Get("status"); rawStatus != "" {
		status, ok := order.ParseStatus(rawStatus)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "unknown status: "+rawStatus)
			return
		}
		filter.Status = status
	}

	seq, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "failed to list orders")
		return
	}

	orders := make([]order.Order, 0)
	for o := range seq {
		orders = append(orders, o)
	}

	respondWithJSON(w, http.StatusOK, ListOrdersResponse{Orders: orders, Count: len(orders)})
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseOrderID(w, r)
	if !ok {
		return
	}

	foundOrder, err := h.svc.GetOrderByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get order by id via service")
		respondWithError(w, mapErrorToStatusCode(err), "failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, foundOrder)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseOrderID(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateStatusRequest

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

	target, valid := order.ParseStatus(requestPayload.Status)
	if !valid {
		respondWithError(w, http.StatusBadRequest, "unknown status: "+requestPayload.Status)
		return
	}

	updatedOrder, err := h.svc.UpdateOrderStatus(r.Context(), id, target)
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", id).Msg("Failed to update order status via service")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, updatedOrder)
}

func (h *OrderHandler) handlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseOrderID(w, r)
	if !ok {
		return
	}

	var requestPayload PaymentCallbackRequest

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

	status, valid := order.ParsePaymentStatus(requestPayload.Status)
	if !valid {
		respondWithError(w, http.StatusBadRequest, "unknown payment status: "+requestPayload.Status)
		return
	}

	updatedOrder, err := h.svc.UpdatePaymentStatus(r.Context(), id, status, requestPayload.TransactionID)
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", id).Msg("Failed to update payment status via service")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, updatedOrder)
}

func (h *OrderHandler) parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("order_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}
	return id, true
}
