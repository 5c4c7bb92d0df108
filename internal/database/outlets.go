package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const outletColumns = `id, name, tax_rate, created_at`

func scanOutlet(row pgx.Row) (Outlet, error) {
	var o Outlet
	err := row.Scan(&o.ID, &o.Name, &o.TaxRate, &o.CreatedAt)
	return o, err
}

type CreateOutletParams struct {
	Name    string
	TaxRate pgtype.Numeric
}

const createOutlet = `
INSERT INTO outlets (name, tax_rate)
VALUES ($1, $2)
RETURNING ` + outletColumns

func (q *Queries) CreateOutlet(ctx context.Context, arg CreateOutletParams) (Outlet, error) {
	return scanOutlet(q.db.QueryRow(ctx, createOutlet, arg.Name, arg.TaxRate))
}

const getOutlet = `SELECT ` + outletColumns + ` FROM outlets WHERE id = $1`

func (q *Queries) GetOutlet(ctx context.Context, id uuid.UUID) (Outlet, error) {
	return scanOutlet(q.db.QueryRow(ctx, getOutlet, id))
}

const listOutlets = `SELECT ` + outletColumns + ` FROM outlets ORDER BY name`

func (q *Queries) ListOutlets(ctx context.Context) ([]Outlet, error) {
	rows, err := q.db.Query(ctx, listOutlets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outlets []Outlet
	for rows.Next() {
		o, err := scanOutlet(rows)
		if err != nil {
			return nil, err
		}
		outlets = append(outlets, o)
	}
	return outlets, rows.Err()
}
