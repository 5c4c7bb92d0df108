package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/middleware"
	"github.com/tavolo-pos/api/internal/service"
	"github.com/tavolo-pos/api/internal/ws"
)

// PaymentStore defines the read-side database methods for payment handlers.
type PaymentStore interface {
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Payment, error)
}

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	store   PaymentStore
	service *service.PaymentService
	hub     *ws.Hub
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(store PaymentStore, svc *service.PaymentService, hub *ws.Hub) *PaymentHandler {
	return &PaymentHandler{store: store, service: svc, hub: hub}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Routes are mounted under /outlets/{outletID}.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders/{orderID}/payments", h.Pay)
	r.Get("/orders/{orderID}/payments", h.List)
}

type payRequest struct {
	Method         string `json:"method"`
	Amount         string `json:"amount"`
	AmountReceived string `json:"amount_received,omitempty"`
	Reference      string `json:"reference,omitempty"`
}

type paymentResponse struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	Method         string    `json:"method"`
	Amount         string    `json:"amount"`
	AmountReceived string    `json:"amount_received"`
	ChangeAmount   string    `json:"change_amount"`
	Reference      *string   `json:"reference,omitempty"`
	Status         string    `json:"status"`
	ProcessedBy    uuid.UUID `json:"processed_by"`
	ProcessedAt    time.Time `json:"processed_at"`
}

type payResponse struct {
	Payment     paymentResponse `json:"payment"`
	Order       orderResponse   `json:"order"`
	Outstanding string          `json:"outstanding"`
	Settled     bool            `json:"settled"`
}

func toPaymentResponse(p database.Payment) paymentResponse {
	return paymentResponse{
		ID:             p.ID,
		OrderID:        p.OrderID,
		Method:         p.Method,
		Amount:         numericToString(p.Amount),
		AmountReceived: numericToString(p.AmountReceived),
		ChangeAmount:   numericToString(p.ChangeAmount),
		Reference:      textPtr(p.Reference),
		Status:         p.Status,
		ProcessedBy:    p.ProcessedBy,
		ProcessedAt:    p.ProcessedAt,
	}
}

// Pay records a payment. Orders may be split across several payments; the
// one that covers the remaining balance settles the order.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be a decimal"})
		return
	}
	received := decimal.Zero
	if req.AmountReceived != "" {
		received, err = decimal.NewFromString(req.AmountReceived)
		if err != nil || received.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount_received must be a non-negative decimal"})
			return
		}
	}

	result, err := h.service.Pay(r.Context(), service.PayRequest{
		OutletID:       outletID,
		OrderID:        orderID,
		ProcessedBy:    claims.UserID,
		Method:         req.Method,
		Amount:         amount,
		AmountReceived: received,
		Reference:      req.Reference,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrOrderNotEditable):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order is not open"})
		case errors.Is(err, service.ErrOrderConflict):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order changed concurrently, retry the request"})
		case errors.Is(err, service.ErrInvalidPaymentMethod),
			errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrInsufficientCash):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOverpayment):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: record payment: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := payResponse{
		Payment:     toPaymentResponse(result.Payment),
		Order:       toOrderResponse(result.Order, nil),
		Outstanding: result.Outstanding.StringFixed(2),
		Settled:     result.Settled,
	}
	if result.Settled && h.hub != nil {
		raw, err := json.Marshal(resp.Order)
		if err == nil {
			h.hub.BroadcastToOutlet(outletID, ws.Event{Type: ws.EventOrderUpdated, Payload: raw})
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List returns the payments recorded against an order.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	payments, err := h.store.ListPaymentsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list payments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}
