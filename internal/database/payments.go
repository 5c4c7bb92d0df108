package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const paymentColumns = `id, order_id, method, amount, amount_received, change_amount,
	reference, status, processed_by, processed_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.AmountReceived, &p.ChangeAmount,
		&p.Reference, &p.Status, &p.ProcessedBy, &p.ProcessedAt,
	)
	return p, err
}

type CreatePaymentParams struct {
	OrderID        uuid.UUID
	Method         string
	Amount         pgtype.Numeric
	AmountReceived pgtype.Numeric
	ChangeAmount   pgtype.Numeric
	Reference      pgtype.Text
	ProcessedBy    uuid.UUID
}

const createPayment = `
INSERT INTO payments (order_id, method, amount, amount_received, change_amount, reference, processed_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + paymentColumns

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, createPayment,
		arg.OrderID, arg.Method, arg.Amount, arg.AmountReceived, arg.ChangeAmount,
		arg.Reference, arg.ProcessedBy,
	))
}

const listPaymentsByOrder = `
SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY processed_at`

func (q *Queries) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listPaymentsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

const sumPaymentsByOrder = `
SELECT COALESCE(SUM(amount), 0)
FROM payments
WHERE order_id = $1 AND status = 'COMPLETED'`

func (q *Queries) SumPaymentsByOrder(ctx context.Context, orderID uuid.UUID) (pgtype.Numeric, error) {
	var sum pgtype.Numeric
	err := q.db.QueryRow(ctx, sumPaymentsByOrder, orderID).Scan(&sum)
	return sum, err
}
