package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, outlet_id, order_number, table_id, order_type, status, notes,
	subtotal, tax_rate, tax_amount, discount_amount, tip_amount, total_amount,
	version, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OutletID, &o.OrderNumber, &o.TableID, &o.OrderType, &o.Status, &o.Notes,
		&o.Subtotal, &o.TaxRate, &o.TaxAmount, &o.DiscountAmount, &o.TipAmount, &o.TotalAmount,
		&o.Version, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

type CreateOrderParams struct {
	OutletID       uuid.UUID
	OrderNumber    string
	TableID        pgtype.UUID
	OrderType      string
	Notes          pgtype.Text
	Subtotal       pgtype.Numeric
	TaxRate        pgtype.Numeric
	TaxAmount      pgtype.Numeric
	DiscountAmount pgtype.Numeric
	TipAmount      pgtype.Numeric
	TotalAmount    pgtype.Numeric
	CreatedBy      uuid.UUID
}

const createOrder = `
INSERT INTO orders (
	outlet_id, order_number, table_id, order_type, notes,
	subtotal, tax_rate, tax_amount, discount_amount, tip_amount, total_amount, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.OutletID, arg.OrderNumber, arg.TableID, arg.OrderType, arg.Notes,
		arg.Subtotal, arg.TaxRate, arg.TaxAmount, arg.DiscountAmount, arg.TipAmount,
		arg.TotalAmount, arg.CreatedBy,
	))
}

type GetOrderParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND outlet_id = $2`

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, arg.ID, arg.OutletID))
}

type ListOrdersParams struct {
	OutletID  uuid.UUID
	Status    pgtype.Text
	OrderType pgtype.Text
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE outlet_id = $1
  AND ($2::text IS NULL OR status = $2)
  AND ($3::text IS NULL OR order_type = $3)
  AND ($4::timestamptz IS NULL OR created_at >= $4)
  AND ($5::timestamptz IS NULL OR created_at < $5)
ORDER BY created_at DESC
LIMIT $6 OFFSET $7`

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.OutletID, arg.Status, arg.OrderType, arg.StartDate, arg.EndDate,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetNextOrderNumber returns MAX+1 of today's sequence for the outlet.
// Two concurrent calls can return the same number; the unique constraint on
// (outlet_id, order_number) catches the loser, which retries.
const getNextOrderNumber = `
SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM '[0-9]+$') AS INT)), 0) + 1
FROM orders
WHERE outlet_id = $1 AND created_at::date = CURRENT_DATE`

func (q *Queries) GetNextOrderNumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx, getNextOrderNumber, outletID).Scan(&n)
	return n, err
}

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	OutletID   uuid.UUID
	Status     string
	PrevStatus string
}

// UpdateOrderStatus only succeeds when the row still holds PrevStatus, so a
// racing transition surfaces as pgx.ErrNoRows instead of clobbering state.
const updateOrderStatus = `
UPDATE orders
SET status = $3, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = $4
RETURNING ` + orderColumns

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.OutletID, arg.Status, arg.PrevStatus))
}

type CancelOrderParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

const cancelOrder = `
UPDATE orders
SET status = 'CANCELLED', updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = 'OPEN'
RETURNING ` + orderColumns

func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.OutletID))
}

const completeOrder = `
UPDATE orders
SET status = 'COMPLETED', updated_at = now()
WHERE id = $1 AND status = 'OPEN'
RETURNING ` + orderColumns

func (q *Queries) CompleteOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, completeOrder, id))
}

type UpdateOrderTotalsParams struct {
	ID             uuid.UUID
	Subtotal       pgtype.Numeric
	TaxAmount      pgtype.Numeric
	DiscountAmount pgtype.Numeric
	TotalAmount    pgtype.Numeric
	Version        int32
}

// UpdateOrderTotals is the optimistic write: it applies only when the order
// is still OPEN and still carries the version the caller's snapshot was read
// at, and bumps the version on success. Zero rows means a stale snapshot or
// an order that went terminal under the caller.
const updateOrderTotals = `
UPDATE orders
SET subtotal = $2, tax_amount = $3, discount_amount = $4, total_amount = $5,
    version = version + 1, updated_at = now()
WHERE id = $1 AND status = 'OPEN' AND version = $6
RETURNING ` + orderColumns

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderTotals,
		arg.ID, arg.Subtotal, arg.TaxAmount, arg.DiscountAmount, arg.TotalAmount, arg.Version,
	))
}

type SetOrderTipParams struct {
	ID          uuid.UUID
	OutletID    uuid.UUID
	TipAmount   pgtype.Numeric
	TotalAmount pgtype.Numeric
	Version     int32
}

// SetOrderTip writes the tip together with the grand total the caller
// recomputed from it, under the same guard as UpdateOrderTotals. Zero rows
// means the order left OPEN or the caller's snapshot went stale.
const setOrderTip = `
UPDATE orders
SET tip_amount = $3, total_amount = $4, version = version + 1, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = 'OPEN' AND version = $5
RETURNING ` + orderColumns

func (q *Queries) SetOrderTip(ctx context.Context, arg SetOrderTipParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, setOrderTip,
		arg.ID, arg.OutletID, arg.TipAmount, arg.TotalAmount, arg.Version,
	))
}
