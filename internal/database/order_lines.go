package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderLineColumns = `id, order_id, menu_item_id, quantity, unit_price, instructions,
	status, station, fired_at, created_at, updated_at`

func scanOrderLine(row pgx.Row) (OrderLine, error) {
	var l OrderLine
	err := row.Scan(
		&l.ID, &l.OrderID, &l.MenuItemID, &l.Quantity, &l.UnitPrice, &l.Instructions,
		&l.Status, &l.Station, &l.FiredAt, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func collectOrderLines(rows pgx.Rows) ([]OrderLine, error) {
	defer rows.Close()
	var lines []OrderLine
	for rows.Next() {
		l, err := scanOrderLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type CreateOrderLineParams struct {
	OrderID      uuid.UUID
	MenuItemID   uuid.UUID
	Quantity     int32
	UnitPrice    pgtype.Numeric
	Instructions pgtype.Text
	Station      pgtype.Text
}

const createOrderLine = `
INSERT INTO order_lines (order_id, menu_item_id, quantity, unit_price, instructions, station)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderLineColumns

func (q *Queries) CreateOrderLine(ctx context.Context, arg CreateOrderLineParams) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, createOrderLine,
		arg.OrderID, arg.MenuItemID, arg.Quantity, arg.UnitPrice, arg.Instructions, arg.Station,
	))
}

const listOrderLinesByOrder = `
SELECT ` + orderLineColumns + ` FROM order_lines WHERE order_id = $1 ORDER BY created_at, id`

func (q *Queries) ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listOrderLinesByOrder, orderID)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}

type GetOrderLineParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

const getOrderLine = `SELECT ` + orderLineColumns + ` FROM order_lines WHERE id = $1 AND order_id = $2`

func (q *Queries) GetOrderLine(ctx context.Context, arg GetOrderLineParams) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, getOrderLine, arg.ID, arg.OrderID))
}

type UpdateOrderLineParams struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	Quantity     int32
	Instructions pgtype.Text
}

// UpdateOrderLine only touches lines that are still NEW; a line the kitchen
// already owns cannot be edited.
const updateOrderLine = `
UPDATE order_lines
SET quantity = $3, instructions = $4, updated_at = now()
WHERE id = $1 AND order_id = $2 AND status = 'NEW'
RETURNING ` + orderLineColumns

func (q *Queries) UpdateOrderLine(ctx context.Context, arg UpdateOrderLineParams) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, updateOrderLine,
		arg.ID, arg.OrderID, arg.Quantity, arg.Instructions,
	))
}

type CancelOrderLineParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

const cancelOrderLine = `
UPDATE order_lines
SET status = 'CANCELLED', updated_at = now()
WHERE id = $1 AND order_id = $2 AND status NOT IN ('DELIVERED', 'CANCELLED')
RETURNING ` + orderLineColumns

func (q *Queries) CancelOrderLine(ctx context.Context, arg CancelOrderLineParams) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, cancelOrderLine, arg.ID, arg.OrderID))
}

type UpdateOrderLineStatusParams struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Status     string
	PrevStatus string
}

const updateOrderLineStatus = `
UPDATE order_lines
SET status = $3, updated_at = now()
WHERE id = $1 AND order_id = $2 AND status = $4
RETURNING ` + orderLineColumns

func (q *Queries) UpdateOrderLineStatus(ctx context.Context, arg UpdateOrderLineStatusParams) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, updateOrderLineStatus,
		arg.ID, arg.OrderID, arg.Status, arg.PrevStatus,
	))
}

// FireOrderLines sends every NEW line of the order to the kitchen in one
// statement and returns the fired set for ticket broadcast.
const fireOrderLines = `
UPDATE order_lines
SET status = 'FIRED', fired_at = now(), updated_at = now()
WHERE order_id = $1 AND status = 'NEW'
RETURNING ` + orderLineColumns

func (q *Queries) FireOrderLines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, fireOrderLines, orderID)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}
