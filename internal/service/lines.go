package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/reconcile"
)

// Errors returned by the line service.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderNotEditable = errors.New("order is not editable")
	ErrOrderConflict    = errors.New("order changed concurrently, retry the request")
)

// DB is satisfied by *pgxpool.Pool: plain queries for snapshot reads plus
// transactions for plan application.
type DB interface {
	database.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LineStore defines the DB methods needed to reconcile order lines.
// Satisfied by *database.Queries (and its WithTx variant).
type LineStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error)
	UpdateOrderLine(ctx context.Context, arg database.UpdateOrderLineParams) (database.OrderLine, error)
	CancelOrderLine(ctx context.Context, arg database.CancelOrderLineParams) (database.OrderLine, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
}

// NewLineStore creates a LineStore from a DBTX (pool or tx).
type NewLineStore func(db database.DBTX) LineStore

// LineService orchestrates line reconciliation: snapshot, plan, atomic
// apply, totals recomputation.
type LineService struct {
	db       DB
	newStore NewLineStore
	catalog  reconcile.Catalog
}

// NewLineService creates a new LineService.
func NewLineService(db DB, newStore NewLineStore, catalog reconcile.Catalog) *LineService {
	return &LineService{db: db, newStore: newStore, catalog: catalog}
}

// ReconcileResult is returned to the handler on success: the recomputed
// order, its full line set, and which edits were applied or skipped.
type ReconcileResult struct {
	Order        database.Order
	Lines        []database.OrderLine
	Totals       reconcile.Totals
	AppliedCount int
	Skipped      []reconcile.Skip
}

// Reconcile applies a batch of line edits to an order. The write plan is
// computed against a fresh snapshot and applied in one transaction guarded
// by the order's version; on ErrOrderConflict nothing was committed and the
// caller may resubmit the identical request. The service never retries on
// its own.
func (s *LineService) Reconcile(ctx context.Context, outletID, orderID uuid.UUID, edits []reconcile.Edit) (*ReconcileResult, error) {
	store := s.newStore(s.db)

	order, err := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusOpen {
		return nil, ErrOrderNotEditable
	}

	snapshot, err := store.ListOrderLinesByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}

	plan, err := reconcile.Reconcile(ctx, outletID, toReconcileLines(snapshot), edits, s.catalog)
	if err != nil {
		return nil, err
	}

	taxRate := numericToDecimal(order.TaxRate)
	discount := numericToDecimal(order.DiscountAmount)
	tip := numericToDecimal(order.TipAmount)

	if plan.Empty() {
		// Nothing to write; report totals from the snapshot.
		totals := reconcile.ComputeTotals(toReconcileLines(snapshot), taxRate, discount, tip)
		return &ReconcileResult{
			Order:   order,
			Lines:   snapshot,
			Totals:  totals,
			Skipped: plan.Skips,
		}, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := s.newStore(tx)

	for _, u := range plan.Updates {
		if u.Cancel {
			_, err = txStore.CancelOrderLine(ctx, database.CancelOrderLineParams{ID: u.LineID, OrderID: orderID})
		} else {
			_, err = txStore.UpdateOrderLine(ctx, database.UpdateOrderLineParams{
				ID:           u.LineID,
				OrderID:      orderID,
				Quantity:     u.Quantity,
				Instructions: textOrNull(u.Instructions),
			})
		}
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// The line left its editable state between snapshot and write.
				return nil, ErrOrderConflict
			}
			return nil, fmt.Errorf("apply line update: %w", err)
		}
	}

	for _, ins := range plan.Inserts {
		_, err := txStore.CreateOrderLine(ctx, database.CreateOrderLineParams{
			OrderID:      orderID,
			MenuItemID:   ins.MenuItemID,
			Quantity:     ins.Quantity,
			UnitPrice:    decimalToNumeric(ins.UnitPrice),
			Instructions: textOrNull(ins.Instructions),
			Station:      textOrNull(ins.Station),
		})
		if err != nil {
			return nil, fmt.Errorf("insert line: %w", err)
		}
	}

	// Totals are derived from the freshly-applied authoritative line set,
	// never from the plan.
	fresh, err := txStore.ListOrderLinesByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reread order lines: %w", err)
	}

	totals := reconcile.ComputeTotals(toReconcileLines(fresh), taxRate, discount, tip)
	if totals.DiscountClamped {
		log.Printf("WARN: order %s discount %s exceeds order total, clamped", orderID, discount.StringFixed(2))
	}

	updated, err := txStore.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:             orderID,
		Subtotal:       decimalToNumeric(totals.Subtotal),
		TaxAmount:      decimalToNumeric(totals.TaxAmount),
		DiscountAmount: decimalToNumeric(totals.DiscountAmount),
		TotalAmount:    decimalToNumeric(totals.GrandTotal),
		Version:        order.Version,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderConflict
		}
		return nil, fmt.Errorf("update order totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &ReconcileResult{
		Order:        updated,
		Lines:        fresh,
		Totals:       totals,
		AppliedCount: len(plan.Updates) + len(plan.Inserts),
		Skipped:      plan.Skips,
	}, nil
}

// --- Helpers ---

func toReconcileLines(rows []database.OrderLine) []reconcile.Line {
	lines := make([]reconcile.Line, len(rows))
	for i, r := range rows {
		lines[i] = reconcile.Line{
			ID:         r.ID,
			MenuItemID: r.MenuItemID,
			Quantity:   r.Quantity,
			UnitPrice:  numericToDecimal(r.UnitPrice),
			Status:     r.Status,
		}
		if r.Instructions.Valid {
			lines[i].Instructions = r.Instructions.String
		}
	}
	return lines
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
