package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/handler"
	"github.com/tavolo-pos/api/internal/middleware"
	"github.com/tavolo-pos/api/internal/service"
)

// --- Mock handler.KitchenStore ---

type mockKitchenStore struct {
	getOrderFn              func(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	fireOrderLinesFn        func(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	updateOrderLineStatusFn func(ctx context.Context, arg database.UpdateOrderLineStatusParams) (database.OrderLine, error)
	getOrderLineFn          func(ctx context.Context, arg database.GetOrderLineParams) (database.OrderLine, error)
}

func (m *mockKitchenStore) GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockKitchenStore) FireOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error) {
	if m.fireOrderLinesFn != nil {
		return m.fireOrderLinesFn(ctx, orderID)
	}
	return []database.OrderLine{}, nil
}

func (m *mockKitchenStore) UpdateOrderLineStatus(ctx context.Context, arg database.UpdateOrderLineStatusParams) (database.OrderLine, error) {
	if m.updateOrderLineStatusFn != nil {
		return m.updateOrderLineStatusFn(ctx, arg)
	}
	return database.OrderLine{}, pgx.ErrNoRows
}

func (m *mockKitchenStore) GetOrderLine(ctx context.Context, arg database.GetOrderLineParams) (database.OrderLine, error) {
	if m.getOrderLineFn != nil {
		return m.getOrderLineFn(ctx, arg)
	}
	return database.OrderLine{}, pgx.ErrNoRows
}

// --- Stateful mock service.LineStore ---
//
// Reconcile reads the line set twice (snapshot, then fresh inside the tx),
// so the mock mutates real state instead of returning canned rows.

type mockLineStore struct {
	order     database.Order
	lines     []database.OrderLine
	totalsErr error
}

func (m *mockLineStore) GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	if arg.ID != m.order.ID || arg.OutletID != m.order.OutletID {
		return database.Order{}, pgx.ErrNoRows
	}
	return m.order, nil
}

func (m *mockLineStore) ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error) {
	out := make([]database.OrderLine, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

func (m *mockLineStore) CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error) {
	now := time.Now()
	line := database.OrderLine{
		ID:           uuid.New(),
		OrderID:      arg.OrderID,
		MenuItemID:   arg.MenuItemID,
		Quantity:     arg.Quantity,
		UnitPrice:    arg.UnitPrice,
		Instructions: arg.Instructions,
		Status:       enum.LineStatusNew,
		Station:      arg.Station,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.lines = append(m.lines, line)
	return line, nil
}

func (m *mockLineStore) UpdateOrderLine(ctx context.Context, arg database.UpdateOrderLineParams) (database.OrderLine, error) {
	for i := range m.lines {
		if m.lines[i].ID == arg.ID && m.lines[i].Status == enum.LineStatusNew {
			m.lines[i].Quantity = arg.Quantity
			m.lines[i].Instructions = arg.Instructions
			return m.lines[i], nil
		}
	}
	return database.OrderLine{}, pgx.ErrNoRows
}

func (m *mockLineStore) CancelOrderLine(ctx context.Context, arg database.CancelOrderLineParams) (database.OrderLine, error) {
	for i := range m.lines {
		if m.lines[i].ID == arg.ID && m.lines[i].Status != enum.LineStatusDelivered && m.lines[i].Status != enum.LineStatusCancelled {
			m.lines[i].Status = enum.LineStatusCancelled
			return m.lines[i], nil
		}
	}
	return database.OrderLine{}, pgx.ErrNoRows
}

func (m *mockLineStore) UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error) {
	if m.totalsErr != nil {
		return database.Order{}, m.totalsErr
	}
	if arg.Version != m.order.Version {
		return database.Order{}, pgx.ErrNoRows
	}
	m.order.Subtotal = arg.Subtotal
	m.order.TaxAmount = arg.TaxAmount
	m.order.DiscountAmount = arg.DiscountAmount
	m.order.TotalAmount = arg.TotalAmount
	m.order.Version++
	return m.order, nil
}

// --- Router setup ---

func setupLineRouter(store handler.KitchenStore, svc *service.LineService) *chi.Mux {
	h := handler.NewLineHandler(store, svc, nil)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/outlets/{outletID}", func(r chi.Router) {
		r.Use(middleware.RequireOutlet)
		h.RegisterRoutes(r)
	})
	return r
}

func newTestLineService(store *mockLineStore) *service.LineService {
	newStore := func(db database.DBTX) service.LineStore { return store }
	return service.NewLineService(&mockPool{}, newStore, burgerCatalog())
}

// --- Reconcile ---

func TestReconcile_UpdatesQuantityAndTotals(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	order := testOrder(outletID)
	line := testOrderLine(order.ID, enum.LineStatusNew)
	store := &mockLineStore{order: order, lines: []database.OrderLine{line}}

	router := setupLineRouter(&mockKitchenStore{}, newTestLineService(store))
	rr := doAuthRequest(t, router, "PUT", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines", map[string]interface{}{
		"edits": []map[string]interface{}{
			{"line_id": line.ID.String(), "quantity": 3},
		},
	}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	if resp["applied_count"] != float64(1) {
		t.Errorf("applied_count: got %v, want 1", resp["applied_count"])
	}
	skipped := resp["skipped"].([]interface{})
	if len(skipped) != 0 {
		t.Errorf("skipped count: got %d, want 0", len(skipped))
	}

	// 3 x 10.00 at 5% tax plus the 5.00 tip already on the order.
	ord := resp["order"].(map[string]interface{})
	if ord["subtotal"] != "30.00" {
		t.Errorf("subtotal: got %v, want 30.00", ord["subtotal"])
	}
	if ord["tax_amount"] != "1.50" {
		t.Errorf("tax_amount: got %v, want 1.50", ord["tax_amount"])
	}
	if ord["total_amount"] != "36.50" {
		t.Errorf("total_amount: got %v, want 36.50", ord["total_amount"])
	}
	lines := ord["lines"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("lines count: got %d, want 1", len(lines))
	}
	if lines[0].(map[string]interface{})["quantity"] != float64(3) {
		t.Errorf("line quantity: got %v, want 3", lines[0].(map[string]interface{})["quantity"])
	}
}

func TestReconcile_AddsNewLine(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	order := testOrder(outletID)
	store := &mockLineStore{order: order}

	router := setupLineRouter(&mockKitchenStore{}, newTestLineService(store))
	rr := doAuthRequest(t, router, "PUT", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines", map[string]interface{}{
		"edits": []map[string]interface{}{
			{"menu_item_ref": "Burger", "quantity": 2},
		},
	}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	if resp["applied_count"] != float64(1) {
		t.Errorf("applied_count: got %v, want 1", resp["applied_count"])
	}
	ord := resp["order"].(map[string]interface{})
	lines := ord["lines"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("lines count: got %d, want 1", len(lines))
	}
	line := lines[0].(map[string]interface{})
	if line["unit_price"] != "10.00" {
		t.Errorf("line unit_price: got %v, want 10.00 (snapshot from catalog)", line["unit_price"])
	}
	if line["station"] != "GRILL" {
		t.Errorf("line station: got %v, want GRILL", line["station"])
	}
}

func TestReconcile_RemoveCancelsLine(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	order := testOrder(outletID)
	keep := testOrderLine(order.ID, enum.LineStatusNew)
	drop := testOrderLine(order.ID, enum.LineStatusFired)
	store := &mockLineStore{order: order, lines: []database.OrderLine{keep, drop}}

	router := setupLineRouter(&mockKitchenStore{}, newTestLineService(store))
	rr := doAuthRequest(t, router, "PUT", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines", map[string]interface{}{
		"edits": []map[string]interface{}{
			{"line_id": drop.ID.String(), "remove": true},
		},
	}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	ord := resp["order"].(map[string]interface{})
	// The kept line alone: 2 x 10.00 = 20.00, tax 1.00, tip 5.00.
	if ord["subtotal"] != "20.00" {
		t.Errorf("subtotal: got %v, want 20.00", ord["subtotal"])
	}
	if ord["total_amount"] != "26.00" {
		t.Errorf("total_amount: got %v, want 26.00", ord["total_amount"])
	}

	for _, raw := range ord["lines"].([]interface{}) {
		l := raw.(map[string]interface{})
		if l["id"] == drop.ID.String() && l["status"] != "CANCELLED" {
			t.Errorf("removed line status: got %v, want CANCELLED", l["status"])
		}
	}
}

func TestReconcile_ReportsSkippedEdits(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	order := testOrder(outletID)
	line := testOrderLine(order.ID, enum.LineStatusNew)
	store := &mockLineStore{order: order, lines: []database.OrderLine{line}}

	router := setupLineRouter(&mockKitchenStore{}, newTestLineService(store))
	rr := doAuthRequest(t, router, "PUT", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines", map[string]interface{}{
		"edits": []map[string]interface{}{
			{"line_id": line.ID.String(), "quantity": 5},
			{"menu_item_ref": "Sushi", "quantity": 1},
		},
	}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	if resp["applied_count"] != float64(1) {
		t.Errorf("applied_count: got %v, want 1", resp["applied_count"])
	}
	skipped := resp["skipped"].([]interface{})
	if len(skipped) != 1 {
		t.Fatalf("skipped count: got %d, want 1", len(skipped))
	}
	skip := skipped[0].(map[string]interface{})
	if skip["reason"] != "unknown_menu_item" {
		t.Errorf("skip reason: got %v, want unknown_menu_item", skip["reason"])
	}
	if skip["menu_item_ref"] != "Sushi" {
		t.Errorf("skip menu_item_ref: got %v, want Sushi", skip["menu_item_ref"])
	}
}

func TestReconcile_OrderNotFound(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	store := &mockLineStore{order: testOrder(uuid.New())}
	router := setupLineRouter(&mockKitchenStore{}, newTestLineService(store))
	rr := doAuthRequest(t, router, "PUT", "/outlets/"+outletID.String()+"/orders/"+uuid.New().String()+"/lines", map[string]interface{}{
		"edits": []map[string]interface{}{},
	}, claims)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestReconcile_CompletedOrderRejected(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	order := testOrder(outletID)
	order.Status = enum.OrderStatusCompleted
	store := &mockLineStore{order: order}

	router := setupLineRouter(&mockKitchenStore{}, newTestLineService(store))
	rr := doAuthRequest(t, router, "PUT", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines", map[string]interface{}{
		"edits": []map[string]interface{}{},
	}, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["error"] != "order is not editable" {
		t.Errorf("error: got %v, want 'order is not editable'", resp["error"])
	}
}

func TestReconcile_VersionConflict(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	order := testOrder(outletID)
	line := testOrderLine(order.ID, enum.LineStatusNew)
	store := &mockLineStore{
		order:     order,
		lines:     []database.OrderLine{line},
		totalsErr: pgx.ErrNoRows,
	}

	router := setupLineRouter(&mockKitchenStore{}, newTestLineService(store))
	rr := doAuthRequest(t, router, "PUT", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines", map[string]interface{}{
		"edits": []map[string]interface{}{
			{"line_id": line.ID.String(), "quantity": 3},
		},
	}, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["error"] != "order changed concurrently, retry the request" {
		t.Errorf("error: got %v", resp["error"])
	}
}

func TestReconcile_InvalidBody(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	store := &mockLineStore{order: testOrder(outletID)}
	router := setupLineRouter(&mockKitchenStore{}, newTestLineService(store))
	rr := doAuthRequest(t, router, "PUT", "/outlets/"+outletID.String()+"/orders/"+uuid.New().String()+"/lines", "not json", claims)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

// --- Fire ---

func TestFire_HappyPath(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	order := testOrder(outletID)
	grill := testOrderLine(order.ID, enum.LineStatusFired)
	beverage := testOrderLine(order.ID, enum.LineStatusFired)
	beverage.Station = pgtype.Text{String: enum.StationBeverage, Valid: true}

	store := &mockKitchenStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return order, nil
		},
		fireOrderLinesFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error) {
			if orderID != order.ID {
				t.Errorf("order_id: got %v, want %v", orderID, order.ID)
			}
			return []database.OrderLine{grill, beverage}, nil
		},
	}

	router := setupLineRouter(store, nil)
	rr := doAuthRequest(t, router, "POST", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/fire", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	fired := resp["fired"].([]interface{})
	if len(fired) != 2 {
		t.Fatalf("fired count: got %d, want 2", len(fired))
	}
	if fired[0].(map[string]interface{})["status"] != "FIRED" {
		t.Errorf("fired line status: got %v, want FIRED", fired[0].(map[string]interface{})["status"])
	}
}

func TestFire_NoNewLines(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	order := testOrder(outletID)
	store := &mockKitchenStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return order, nil
		},
	}

	router := setupLineRouter(store, nil)
	rr := doAuthRequest(t, router, "POST", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/fire", nil, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["error"] != "no new lines to fire" {
		t.Errorf("error: got %v, want 'no new lines to fire'", resp["error"])
	}
}

func TestFire_CancelledOrder(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	order := testOrder(outletID)
	order.Status = enum.OrderStatusCancelled
	store := &mockKitchenStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return order, nil
		},
	}

	router := setupLineRouter(store, nil)
	rr := doAuthRequest(t, router, "POST", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/fire", nil, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestFire_OrderNotFound(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleWaiter)

	router := setupLineRouter(&mockKitchenStore{}, nil)
	rr := doAuthRequest(t, router, "POST", "/outlets/"+outletID.String()+"/orders/"+uuid.New().String()+"/fire", nil, claims)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

// --- UpdateLineStatus ---

func TestUpdateLineStatus_FiredToCooking(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleKitchen)

	order := testOrder(outletID)
	line := testOrderLine(order.ID, enum.LineStatusFired)

	store := &mockKitchenStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return order, nil
		},
		getOrderLineFn: func(ctx context.Context, arg database.GetOrderLineParams) (database.OrderLine, error) {
			return line, nil
		},
		updateOrderLineStatusFn: func(ctx context.Context, arg database.UpdateOrderLineStatusParams) (database.OrderLine, error) {
			if arg.PrevStatus != enum.LineStatusFired {
				t.Errorf("prev_status: got %v, want FIRED", arg.PrevStatus)
			}
			updated := line
			updated.Status = arg.Status
			return updated, nil
		},
	}

	router := setupLineRouter(store, nil)
	rr := doAuthRequest(t, router, "PATCH", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines/"+line.ID.String()+"/status", map[string]string{
		"status": "COOKING",
	}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["status"] != "COOKING" {
		t.Errorf("status: got %v, want COOKING", resp["status"])
	}
}

func TestUpdateLineStatus_IllegalTransition(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleKitchen)

	order := testOrder(outletID)
	line := testOrderLine(order.ID, enum.LineStatusNew)

	store := &mockKitchenStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return order, nil
		},
		getOrderLineFn: func(ctx context.Context, arg database.GetOrderLineParams) (database.OrderLine, error) {
			return line, nil
		},
	}

	router := setupLineRouter(store, nil)
	rr := doAuthRequest(t, router, "PATCH", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines/"+line.ID.String()+"/status", map[string]string{
		"status": "COOKING",
	}, claims)

	// NEW lines go to the kitchen via fire, never directly to COOKING.
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}
}

func TestUpdateLineStatus_CancelNotAllowedHere(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleKitchen)

	order := testOrder(outletID)
	line := testOrderLine(order.ID, enum.LineStatusFired)

	store := &mockKitchenStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return order, nil
		},
		getOrderLineFn: func(ctx context.Context, arg database.GetOrderLineParams) (database.OrderLine, error) {
			return line, nil
		},
	}

	router := setupLineRouter(store, nil)
	rr := doAuthRequest(t, router, "PATCH", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines/"+line.ID.String()+"/status", map[string]string{
		"status": "CANCELLED",
	}, claims)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}
}

func TestUpdateLineStatus_ConcurrentChange(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleKitchen)

	order := testOrder(outletID)
	line := testOrderLine(order.ID, enum.LineStatusFired)

	store := &mockKitchenStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return order, nil
		},
		getOrderLineFn: func(ctx context.Context, arg database.GetOrderLineParams) (database.OrderLine, error) {
			return line, nil
		},
		updateOrderLineStatusFn: func(ctx context.Context, arg database.UpdateOrderLineStatusParams) (database.OrderLine, error) {
			// Another terminal moved the line between read and write.
			return database.OrderLine{}, pgx.ErrNoRows
		},
	}

	router := setupLineRouter(store, nil)
	rr := doAuthRequest(t, router, "PATCH", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines/"+line.ID.String()+"/status", map[string]string{
		"status": "COOKING",
	}, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestUpdateLineStatus_LineNotFound(t *testing.T) {
	outletID := uuid.New()
	claims := testClaims(outletID, enum.UserRoleKitchen)

	order := testOrder(outletID)
	store := &mockKitchenStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return order, nil
		},
	}

	router := setupLineRouter(store, nil)
	rr := doAuthRequest(t, router, "PATCH", "/outlets/"+outletID.String()+"/orders/"+order.ID.String()+"/lines/"+uuid.New().String()+"/status", map[string]string{
		"status": "COOKING",
	}, claims)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}
