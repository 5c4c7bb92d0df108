package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/reconcile"
	"github.com/tavolo-pos/api/internal/service"
	"github.com/tavolo-pos/api/internal/ws"
)

// KitchenStore defines the database methods for firing tickets and moving
// lines through kitchen states.
type KitchenStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	FireOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	UpdateOrderLineStatus(ctx context.Context, arg database.UpdateOrderLineStatusParams) (database.OrderLine, error)
	GetOrderLine(ctx context.Context, arg database.GetOrderLineParams) (database.OrderLine, error)
}

// LineHandler handles line editing and kitchen flow endpoints.
type LineHandler struct {
	store   KitchenStore
	service *service.LineService
	hub     *ws.Hub
}

// NewLineHandler creates a new LineHandler.
func NewLineHandler(store KitchenStore, svc *service.LineService, hub *ws.Hub) *LineHandler {
	return &LineHandler{store: store, service: svc, hub: hub}
}

// RegisterRoutes registers line endpoints on the given Chi router.
// Routes are mounted under /outlets/{outletID}.
func (h *LineHandler) RegisterRoutes(r chi.Router) {
	r.Put("/orders/{orderID}/lines", h.Reconcile)
	r.Post("/orders/{orderID}/fire", h.Fire)
	r.Patch("/orders/{orderID}/lines/{lineID}/status", h.UpdateLineStatus)
}

// --- Request / Response types ---

type lineEditRequest struct {
	LineID       *uuid.UUID `json:"line_id"`
	Remove       bool       `json:"remove,omitempty"`
	MenuItemRef  string     `json:"menu_item_ref,omitempty"`
	Quantity     int32      `json:"quantity"`
	Instructions string     `json:"instructions,omitempty"`
}

type reconcileRequest struct {
	Edits []lineEditRequest `json:"edits"`
}

type skippedEditResponse struct {
	LineID      *uuid.UUID `json:"line_id,omitempty"`
	MenuItemRef string     `json:"menu_item_ref,omitempty"`
	Reason      string     `json:"reason"`
	Message     string     `json:"message"`
}

type reconcileResponse struct {
	Order        orderResponse         `json:"order"`
	AppliedCount int                   `json:"applied_count"`
	Skipped      []skippedEditResponse `json:"skipped"`
}

type lineStatusRequest struct {
	Status string `json:"status"`
}

// lineTransitions is the kitchen state machine: each status lists the
// statuses a line may move to next. Cancellation goes through the
// reconcile endpoint, not here.
var lineTransitions = map[string][]string{
	enum.LineStatusFired:   {enum.LineStatusCooking},
	enum.LineStatusCooking: {enum.LineStatusReady},
	enum.LineStatusReady:   {enum.LineStatusDelivered},
}

func transitionAllowed(from, to string) bool {
	for _, s := range lineTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// --- Handlers ---

// Reconcile replaces the order's editable line state with the submitted
// edits: updates, new lines, and removals in one atomic batch. Edits that
// cannot apply are skipped and reported, never failing the batch.
func (h *LineHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	outletID, orderID, ok := h.parsePath(w, r)
	if !ok {
		return
	}

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	edits := make([]reconcile.Edit, 0, len(req.Edits))
	for _, e := range req.Edits {
		edit := reconcile.Edit{
			Remove:       e.Remove,
			MenuItemRef:  e.MenuItemRef,
			Quantity:     e.Quantity,
			Instructions: e.Instructions,
		}
		if e.LineID == nil || *e.LineID == uuid.Nil {
			edit.IsNew = true
		} else {
			edit.LineID = *e.LineID
		}
		edits = append(edits, edit)
	}

	result, err := h.service.Reconcile(r.Context(), outletID, orderID, edits)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrOrderNotEditable):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order is not editable"})
		case errors.Is(err, service.ErrOrderConflict):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order changed concurrently, retry the request"})
		default:
			log.Printf("ERROR: reconcile order lines: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	skipped := make([]skippedEditResponse, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		entry := skippedEditResponse{
			MenuItemRef: s.Edit.MenuItemRef,
			Reason:      string(s.Reason),
			Message:     s.Message,
		}
		if !s.Edit.IsNew {
			id := s.Edit.LineID
			entry.LineID = &id
		}
		skipped = append(skipped, entry)
	}

	resp := reconcileResponse{
		Order:        toOrderResponse(result.Order, result.Lines),
		AppliedCount: result.AppliedCount,
		Skipped:      skipped,
	}
	h.broadcast(outletID, ws.EventOrderUpdated, "", resp.Order)
	writeJSON(w, http.StatusOK, resp)
}

// Fire sends every NEW line of the order to the kitchen and broadcasts a
// ticket per station.
func (h *LineHandler) Fire(w http.ResponseWriter, r *http.Request) {
	outletID, orderID, ok := h.parsePath(w, r)
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
	if order.Status != enum.OrderStatusOpen {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order is not open"})
		return
	}

	fired, err := h.store.FireOrderLines(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: fire order lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if len(fired) == 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no new lines to fire"})
		return
	}

	// One ticket per station so each screen only sees its own work.
	byStation := map[string][]orderLineResponse{}
	for _, l := range fired {
		station := ""
		if l.Station.Valid {
			station = l.Station.String
		}
		byStation[station] = append(byStation[station], toOrderLineResponse(l))
	}
	for station, lines := range byStation {
		h.broadcast(outletID, ws.EventTicketFired, station, map[string]interface{}{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"table_id":     uuidPtr(order.TableID),
			"station":      station,
			"lines":        lines,
		})
	}

	out := make([]orderLineResponse, 0, len(fired))
	for _, l := range fired {
		out = append(out, toOrderLineResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"fired": out})
}

// UpdateLineStatus advances one line through the kitchen flow.
func (h *LineHandler) UpdateLineStatus(w http.ResponseWriter, r *http.Request) {
	outletID, orderID, ok := h.parsePath(w, r)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line id"})
		return
	}

	var req lineStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if _, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, OutletID: outletID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	line, err := h.store.GetOrderLine(r.Context(), database.GetOrderLineParams{ID: lineID, OrderID: orderID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "line not found"})
			return
		}
		log.Printf("ERROR: get order line: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if !transitionAllowed(line.Status, req.Status) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "cannot move line from " + line.Status + " to " + req.Status,
		})
		return
	}

	updated, err := h.store.UpdateOrderLineStatus(r.Context(), database.UpdateOrderLineStatusParams{
		ID:         lineID,
		OrderID:    orderID,
		Status:     req.Status,
		PrevStatus: line.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "line changed concurrently, retry the request"})
			return
		}
		log.Printf("ERROR: update order line status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderLineResponse(updated)
	h.broadcast(outletID, ws.EventLineStatus, "", map[string]interface{}{
		"order_id": orderID,
		"line":     resp,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (h *LineHandler) parsePath(w http.ResponseWriter, r *http.Request) (outletID, orderID uuid.UUID, ok bool) {
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

func (h *LineHandler) broadcast(outletID uuid.UUID, eventType, station string, payload interface{}) {
	if h.hub == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.hub.BroadcastToOutlet(outletID, ws.Event{Type: eventType, Station: station, Payload: raw})
}
