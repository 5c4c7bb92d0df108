package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/middleware"
	"github.com/tavolo-pos/api/internal/service"
	"github.com/tavolo-pos/api/internal/ws"
)

// OrderStore defines the database methods needed by order handlers beyond
// what OrderService covers.
type OrderStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	SetOrderTip(ctx context.Context, arg database.SetOrderTipParams) (database.Order, error)
}

// OrderHandler handles order lifecycle endpoints.
type OrderHandler struct {
	store   OrderStore
	service *service.OrderService
	hub     *ws.Hub
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, svc *service.OrderService, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{store: store, service: svc, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Routes are mounted under /outlets/{outletID}.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders", h.List)
	r.Get("/orders/{orderID}", h.Get)
	r.Post("/orders/{orderID}/cancel", h.Cancel)
	r.Put("/orders/{orderID}/tip", h.SetTip)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType      string                   `json:"order_type"`
	TableID        string                   `json:"table_id,omitempty"`
	Notes          string                   `json:"notes,omitempty"`
	DiscountAmount string                   `json:"discount_amount,omitempty"`
	TipAmount      string                   `json:"tip_amount,omitempty"`
	Items          []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemRef  string `json:"menu_item_ref"`
	Quantity     int32  `json:"quantity"`
	Instructions string `json:"instructions,omitempty"`
}

type setTipRequest struct {
	TipAmount string `json:"tip_amount"`
}

type orderLineResponse struct {
	ID           uuid.UUID  `json:"id"`
	MenuItemID   uuid.UUID  `json:"menu_item_id"`
	Quantity     int32      `json:"quantity"`
	UnitPrice    string     `json:"unit_price"`
	LineTotal    string     `json:"line_total"`
	Instructions *string    `json:"instructions,omitempty"`
	Status       string     `json:"status"`
	Station      *string    `json:"station,omitempty"`
	FiredAt      *time.Time `json:"fired_at,omitempty"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OutletID       uuid.UUID           `json:"outlet_id"`
	OrderNumber    string              `json:"order_number"`
	TableID        *uuid.UUID          `json:"table_id,omitempty"`
	OrderType      string              `json:"order_type"`
	Status         string              `json:"status"`
	Notes          *string             `json:"notes,omitempty"`
	Subtotal       string              `json:"subtotal"`
	TaxRate        string              `json:"tax_rate"`
	TaxAmount      string              `json:"tax_amount"`
	DiscountAmount string              `json:"discount_amount"`
	TipAmount      string              `json:"tip_amount"`
	TotalAmount    string              `json:"total_amount"`
	CreatedBy      uuid.UUID           `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
	Lines          []orderLineResponse `json:"lines,omitempty"`
}

func toOrderLineResponse(l database.OrderLine) orderLineResponse {
	resp := orderLineResponse{
		ID:           l.ID,
		MenuItemID:   l.MenuItemID,
		Quantity:     l.Quantity,
		UnitPrice:    numericToString(l.UnitPrice),
		Instructions: textPtr(l.Instructions),
		Status:       l.Status,
		Station:      textPtr(l.Station),
	}
	resp.LineTotal = lineTotal(l)
	if l.FiredAt.Valid {
		t := l.FiredAt.Time
		resp.FiredAt = &t
	}
	return resp
}

func toOrderResponse(o database.Order, lines []database.OrderLine) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		OutletID:       o.OutletID,
		OrderNumber:    o.OrderNumber,
		TableID:        uuidPtr(o.TableID),
		OrderType:      o.OrderType,
		Status:         o.Status,
		Notes:          textPtr(o.Notes),
		Subtotal:       numericToString(o.Subtotal),
		TaxRate:        numericToString(o.TaxRate),
		TaxAmount:      numericToString(o.TaxAmount),
		DiscountAmount: numericToString(o.DiscountAmount),
		TipAmount:      numericToString(o.TipAmount),
		TotalAmount:    numericToString(o.TotalAmount),
		CreatedBy:      o.CreatedBy,
		CreatedAt:      o.CreatedAt,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, toOrderLineResponse(l))
	}
	return resp
}

// --- Handlers ---

// Create opens a new order with an initial set of lines.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := make([]service.CreateOrderLineRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.CreateOrderLineRequest{
			MenuItemRef:  it.MenuItemRef,
			Quantity:     it.Quantity,
			Instructions: it.Instructions,
		})
	}

	result, err := h.service.CreateOrder(r.Context(), service.CreateOrderRequest{
		OutletID:       outletID,
		CreatedBy:      claims.UserID,
		OrderType:      req.OrderType,
		TableID:        req.TableID,
		Notes:          req.Notes,
		DiscountAmount: req.DiscountAmount,
		TipAmount:      req.TipAmount,
		Items:          items,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyItems),
			errors.Is(err, service.ErrInvalidOrderType),
			errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrInvalidTableID),
			errors.Is(err, service.ErrInvalidDiscount),
			errors.Is(err, service.ErrInvalidTip):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrMenuItemNotFound):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: create order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toOrderResponse(result.Order, result.Lines)
	h.broadcast(outletID, ws.EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List returns orders for the outlet, filterable by status, type and
// creation window.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}

	q := r.URL.Query()
	params := database.ListOrdersParams{
		OutletID: outletID,
		Limit:    50,
	}
	if s := q.Get("status"); s != "" {
		params.Status = pgtype.Text{String: s, Valid: true}
	}
	if s := q.Get("order_type"); s != "" {
		params.OrderType = pgtype.Text{String: s, Valid: true}
	}
	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date must be RFC3339"})
			return
		}
		params.StartDate = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must be RFC3339"})
			return
		}
		params.EndDate = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 200 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 200"})
			return
		}
		params.Limit = int32(n)
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		params.Offset = int32(n)
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o, nil))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns a single order with its full line set.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	outletID, orderID, ok := h.parseOrderPath(w, r)
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	lines, err := h.store.ListOrderLinesByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, lines))
}

// Cancel voids an open order. Completed orders cannot be cancelled.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	outletID, orderID, ok := h.parseOrderPath(w, r)
	if !ok {
		return
	}

	order, err := h.store.CancelOrder(r.Context(), database.CancelOrderParams{ID: orderID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order is not open"})
			return
		}
		log.Printf("ERROR: cancel order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order, nil)
	h.broadcast(outletID, ws.EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

// SetTip updates the tip on an open order and rederives the grand total
// from the stored aggregates, so settlement and reports always see the
// tipped amount. The write is version-guarded like the reconcile totals
// write.
func (h *OrderHandler) SetTip(w http.ResponseWriter, r *http.Request) {
	outletID, orderID, ok := h.parseOrderPath(w, r)
	if !ok {
		return
	}

	var req setTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	tip, err := parseNonNegativeAmount(req.TipAmount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tip_amount must be a non-negative decimal"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if order.Status != enum.OrderStatusOpen {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order is not open"})
		return
	}

	total := numericToDecimal(order.Subtotal).
		Add(numericToDecimal(order.TaxAmount)).
		Add(tip).
		Sub(numericToDecimal(order.DiscountAmount))
	if total.IsNegative() {
		total = decimal.Zero
	}

	updated, err := h.store.SetOrderTip(r.Context(), database.SetOrderTipParams{
		ID:          orderID,
		OutletID:    outletID,
		TipAmount:   decimalToNumeric(tip),
		TotalAmount: decimalToNumeric(total),
		Version:     order.Version,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order changed concurrently, retry the request"})
			return
		}
		log.Printf("ERROR: set order tip: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(updated, nil)
	h.broadcast(outletID, ws.EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) parseOrderPath(w http.ResponseWriter, r *http.Request) (outletID, orderID uuid.UUID, ok bool) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return uuid.Nil, uuid.Nil, false
	}
	orderID, err = uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return uuid.Nil, uuid.Nil, false
	}
	return outletID, orderID, true
}

func (h *OrderHandler) broadcast(outletID uuid.UUID, eventType string, payload interface{}) {
	if h.hub == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.hub.BroadcastToOutlet(outletID, ws.Event{Type: eventType, Payload: raw})
}
