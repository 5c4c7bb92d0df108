package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tableColumns = `id, outlet_id, label, seats, status, occupied_at, cleared_at, created_at`

func scanTable(row pgx.Row) (DiningTable, error) {
	var t DiningTable
	err := row.Scan(&t.ID, &t.OutletID, &t.Label, &t.Seats, &t.Status, &t.OccupiedAt, &t.ClearedAt, &t.CreatedAt)
	return t, err
}

type CreateTableParams struct {
	OutletID uuid.UUID
	Label    string
	Seats    int32
}

const createTable = `
INSERT INTO dining_tables (outlet_id, label, seats)
VALUES ($1, $2, $3)
RETURNING ` + tableColumns

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (DiningTable, error) {
	return scanTable(q.db.QueryRow(ctx, createTable, arg.OutletID, arg.Label, arg.Seats))
}

type GetTableParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

const getTable = `SELECT ` + tableColumns + ` FROM dining_tables WHERE id = $1 AND outlet_id = $2`

func (q *Queries) GetTable(ctx context.Context, arg GetTableParams) (DiningTable, error) {
	return scanTable(q.db.QueryRow(ctx, getTable, arg.ID, arg.OutletID))
}

const listTables = `
SELECT ` + tableColumns + ` FROM dining_tables WHERE outlet_id = $1 ORDER BY label`

func (q *Queries) ListTables(ctx context.Context, outletID uuid.UUID) ([]DiningTable, error) {
	rows, err := q.db.Query(ctx, listTables, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []DiningTable
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

type OccupyTableParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

// Seating is a conditional transition: only a FREE table can be occupied, so
// double-seating races lose with pgx.ErrNoRows.
const occupyTable = `
UPDATE dining_tables
SET status = 'OCCUPIED', occupied_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = 'FREE'
RETURNING ` + tableColumns

func (q *Queries) OccupyTable(ctx context.Context, arg OccupyTableParams) (DiningTable, error) {
	return scanTable(q.db.QueryRow(ctx, occupyTable, arg.ID, arg.OutletID))
}

type ReleaseTableParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

// ReleaseTable stamps cleared_at so turnover duration can be reported as
// cleared_at - occupied_at.
const releaseTable = `
UPDATE dining_tables
SET status = 'FREE', cleared_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = 'OCCUPIED'
RETURNING ` + tableColumns

func (q *Queries) ReleaseTable(ctx context.Context, arg ReleaseTableParams) (DiningTable, error) {
	return scanTable(q.db.QueryRow(ctx, releaseTable, arg.ID, arg.OutletID))
}

type DeleteTableParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

const deleteTable = `DELETE FROM dining_tables WHERE id = $1 AND outlet_id = $2`

func (q *Queries) DeleteTable(ctx context.Context, arg DeleteTableParams) error {
	_, err := q.db.Exec(ctx, deleteTable, arg.ID, arg.OutletID)
	return err
}
