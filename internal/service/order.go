package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/reconcile"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems       = errors.New("items are required")
	ErrInvalidOrderType = errors.New("invalid order_type")
	ErrInvalidQuantity  = errors.New("quantity must be > 0")
	ErrMenuItemNotFound = errors.New("menu item not found in outlet")
	ErrInvalidTableID   = errors.New("invalid table_id")
	ErrInvalidDiscount  = errors.New("invalid discount_amount")
	ErrInvalidTip       = errors.New("invalid tip_amount")
)

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetOutlet(ctx context.Context, id uuid.UUID) (database.Outlet, error)
	GetNextOrderNumber(ctx context.Context, outletID uuid.UUID) (int32, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	OutletID       uuid.UUID
	CreatedBy      uuid.UUID
	OrderType      string
	TableID        string
	Notes          string
	DiscountAmount string
	TipAmount      string
	Items          []CreateOrderLineRequest
}

// CreateOrderLineRequest is a single line in the order. MenuItemRef is an id
// or an exact item name, resolved through the catalog.
type CreateOrderLineRequest struct {
	MenuItemRef  string
	Quantity     int32
	Instructions string
}

// CreateOrderResult is the full created order with its lines.
type CreateOrderResult struct {
	Order database.Order
	Lines []database.OrderLine
}

// OrderService handles order creation.
type OrderService struct {
	db       DB
	newStore NewOrderStore
	catalog  reconcile.Catalog
}

// NewOrderService creates a new OrderService.
func NewOrderService(db DB, newStore NewOrderStore, catalog reconcile.Catalog) *OrderService {
	return &OrderService{db: db, newStore: newStore, catalog: catalog}
}

// CreateOrder validates the request, snapshots unit prices from the catalog,
// computes initial totals, and persists the order atomically. Retries up to
// maxOrderNumberRetries times on order_number unique constraint violations
// (concurrent transactions can draw the same MAX).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if !isValidOrderType(req.OrderType) {
		return nil, ErrInvalidOrderType
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	discount := decimal.Zero
	if req.DiscountAmount != "" {
		d, err := decimal.NewFromString(req.DiscountAmount)
		if err != nil || d.IsNegative() {
			return nil, ErrInvalidDiscount
		}
		discount = d
	}
	tip := decimal.Zero
	if req.TipAmount != "" {
		d, err := decimal.NewFromString(req.TipAmount)
		if err != nil || d.IsNegative() {
			return nil, ErrInvalidTip
		}
		tip = d
	}

	tableID := pgtype.UUID{}
	if req.TableID != "" {
		tid, err := uuid.Parse(req.TableID)
		if err != nil {
			return nil, ErrInvalidTableID
		}
		tableID = pgtype.UUID{Bytes: tid, Valid: true}
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, tableID, discount, tip)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks for a unique constraint violation on the
// per-outlet order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_outlet_id_order_number_key"
	}
	return false
}

type pendingLine struct {
	item         reconcile.CatalogItem
	quantity     int32
	instructions string
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, tableID pgtype.UUID, discount, tip decimal.Decimal) (*CreateOrderResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	outlet, err := store.GetOutlet(ctx, req.OutletID)
	if err != nil {
		return nil, fmt.Errorf("get outlet: %w", err)
	}
	taxRate := numericToDecimal(outlet.TaxRate)

	nextNum, err := store.GetNextOrderNumber(ctx, req.OutletID)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("TVL-%03d", nextNum)

	// Resolve items and snapshot unit prices. Duplicate menu items in one
	// request collapse into a single line, same as the reconciler would.
	var pending []pendingLine
	index := make(map[uuid.UUID]int)
	for i, item := range req.Items {
		resolved, err := s.catalog.Resolve(ctx, req.OutletID, item.MenuItemRef)
		if err != nil {
			if errors.Is(err, reconcile.ErrNotFound) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		if at, ok := index[resolved.ID]; ok {
			pending[at].quantity += item.Quantity
			if item.Instructions != "" {
				pending[at].instructions = item.Instructions
			}
			continue
		}
		index[resolved.ID] = len(pending)
		pending = append(pending, pendingLine{
			item:         resolved,
			quantity:     item.Quantity,
			instructions: item.Instructions,
		})
	}

	// Initial totals from the pending lines; the same calculator the
	// reconciler uses afterwards.
	var calcLines []reconcile.Line
	for _, p := range pending {
		calcLines = append(calcLines, reconcile.Line{
			MenuItemID: p.item.ID,
			Quantity:   p.quantity,
			UnitPrice:  p.item.UnitPrice,
			Status:     enum.LineStatusNew,
		})
	}
	totals := reconcile.ComputeTotals(calcLines, taxRate, discount, tip)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OutletID:       req.OutletID,
		OrderNumber:    orderNumber,
		TableID:        tableID,
		OrderType:      req.OrderType,
		Notes:          textOrNull(req.Notes),
		Subtotal:       decimalToNumeric(totals.Subtotal),
		TaxRate:        decimalToNumeric4(taxRate),
		TaxAmount:      decimalToNumeric(totals.TaxAmount),
		DiscountAmount: decimalToNumeric(totals.DiscountAmount),
		TipAmount:      decimalToNumeric(totals.TipAmount),
		TotalAmount:    decimalToNumeric(totals.GrandTotal),
		CreatedBy:      req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var lines []database.OrderLine
	for _, p := range pending {
		line, err := store.CreateOrderLine(ctx, database.CreateOrderLineParams{
			OrderID:      order.ID,
			MenuItemID:   p.item.ID,
			Quantity:     p.quantity,
			UnitPrice:    decimalToNumeric(p.item.UnitPrice),
			Instructions: textOrNull(p.instructions),
			Station:      textOrNull(p.item.Station),
		})
		if err != nil {
			return nil, fmt.Errorf("create order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Lines: lines}, nil
}

// --- Helpers ---

func isValidOrderType(s string) bool {
	switch s {
	case enum.OrderTypeDineIn, enum.OrderTypeTakeaway, enum.OrderTypeDelivery:
		return true
	}
	return false
}

// Tax rates keep four decimal places; amounts keep two.
func decimalToNumeric4(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(4))
	return n
}
