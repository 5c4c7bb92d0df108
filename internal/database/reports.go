package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type GetDailySalesParams struct {
	OutletID  uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

type GetDailySalesRow struct {
	Day           time.Time
	OrderCount    int64
	TotalRevenue  pgtype.Numeric
	TotalDiscount pgtype.Numeric
	TotalTips     pgtype.Numeric
}

const getDailySales = `
SELECT date_trunc('day', created_at) AS day,
       COUNT(*) AS order_count,
       COALESCE(SUM(total_amount), 0) AS total_revenue,
       COALESCE(SUM(discount_amount), 0) AS total_discount,
       COALESCE(SUM(tip_amount), 0) AS total_tips
FROM orders
WHERE outlet_id = $1 AND status = 'COMPLETED'
  AND created_at >= $2 AND created_at < $3
GROUP BY 1
ORDER BY 1`

func (q *Queries) GetDailySales(ctx context.Context, arg GetDailySalesParams) ([]GetDailySalesRow, error) {
	rows, err := q.db.Query(ctx, getDailySales, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetDailySalesRow
	for rows.Next() {
		var r GetDailySalesRow
		if err := rows.Scan(&r.Day, &r.OrderCount, &r.TotalRevenue, &r.TotalDiscount, &r.TotalTips); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type GetPaymentSummaryParams struct {
	OutletID  uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

type GetPaymentSummaryRow struct {
	Method           string
	TransactionCount int64
	TotalAmount      pgtype.Numeric
}

const getPaymentSummary = `
SELECT p.method,
       COUNT(*) AS transaction_count,
       COALESCE(SUM(p.amount), 0) AS total_amount
FROM payments p
JOIN orders o ON o.id = p.order_id
WHERE o.outlet_id = $1 AND p.status = 'COMPLETED'
  AND p.processed_at >= $2 AND p.processed_at < $3
GROUP BY p.method
ORDER BY p.method`

func (q *Queries) GetPaymentSummary(ctx context.Context, arg GetPaymentSummaryParams) ([]GetPaymentSummaryRow, error) {
	rows, err := q.db.Query(ctx, getPaymentSummary, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetPaymentSummaryRow
	for rows.Next() {
		var r GetPaymentSummaryRow
		if err := rows.Scan(&r.Method, &r.TransactionCount, &r.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type GetItemSalesParams struct {
	OutletID  uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

type GetItemSalesRow struct {
	MenuItemID   uuid.UUID
	MenuItemName string
	QuantitySold int64
	TotalRevenue pgtype.Numeric
}

const getItemSales = `
SELECT l.menu_item_id,
       m.name,
       COALESCE(SUM(l.quantity), 0) AS quantity_sold,
       COALESCE(SUM(l.quantity * l.unit_price), 0) AS total_revenue
FROM order_lines l
JOIN orders o ON o.id = l.order_id
JOIN menu_items m ON m.id = l.menu_item_id
WHERE o.outlet_id = $1 AND o.status = 'COMPLETED' AND l.status <> 'CANCELLED'
  AND o.created_at >= $2 AND o.created_at < $3
GROUP BY l.menu_item_id, m.name
ORDER BY quantity_sold DESC`

func (q *Queries) GetItemSales(ctx context.Context, arg GetItemSalesParams) ([]GetItemSalesRow, error) {
	rows, err := q.db.Query(ctx, getItemSales, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetItemSalesRow
	for rows.Next() {
		var r GetItemSalesRow
		if err := rows.Scan(&r.MenuItemID, &r.MenuItemName, &r.QuantitySold, &r.TotalRevenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
