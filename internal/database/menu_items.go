package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, outlet_id, category_id, name, unit_price, station, available,
	created_at, updated_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID, &m.OutletID, &m.CategoryID, &m.Name, &m.UnitPrice, &m.Station, &m.Available,
		&m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

type CreateMenuItemParams struct {
	OutletID   uuid.UUID
	CategoryID pgtype.UUID
	Name       string
	UnitPrice  pgtype.Numeric
	Station    pgtype.Text
}

const createMenuItem = `
INSERT INTO menu_items (outlet_id, category_id, name, unit_price, station)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + menuItemColumns

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, createMenuItem,
		arg.OutletID, arg.CategoryID, arg.Name, arg.UnitPrice, arg.Station,
	))
}

type GetMenuItemParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

const getMenuItem = `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1 AND outlet_id = $2`

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, arg.ID, arg.OutletID))
}

type GetMenuItemByNameParams struct {
	OutletID uuid.UUID
	Name     string
}

const getMenuItemByName = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE outlet_id = $1 AND lower(name) = lower($2) AND available
ORDER BY created_at
LIMIT 1`

func (q *Queries) GetMenuItemByName(ctx context.Context, arg GetMenuItemByNameParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItemByName, arg.OutletID, arg.Name))
}

type ListMenuItemsParams struct {
	OutletID   uuid.UUID
	CategoryID pgtype.UUID
}

const listMenuItems = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE outlet_id = $1 AND ($2::uuid IS NULL OR category_id = $2)
ORDER BY name`

func (q *Queries) ListMenuItems(ctx context.Context, arg ListMenuItemsParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, arg.OutletID, arg.CategoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

type UpdateMenuItemParams struct {
	ID         uuid.UUID
	OutletID   uuid.UUID
	CategoryID pgtype.UUID
	Name       string
	UnitPrice  pgtype.Numeric
	Station    pgtype.Text
	Available  bool
}

const updateMenuItem = `
UPDATE menu_items
SET category_id = $3, name = $4, unit_price = $5, station = $6, available = $7, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING ` + menuItemColumns

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, updateMenuItem,
		arg.ID, arg.OutletID, arg.CategoryID, arg.Name, arg.UnitPrice, arg.Station, arg.Available,
	))
}

type DeactivateMenuItemParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

// Menu items referenced by historical order lines are never deleted, only
// taken off the menu.
const deactivateMenuItem = `
UPDATE menu_items
SET available = false, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING ` + menuItemColumns

func (q *Queries) DeactivateMenuItem(ctx context.Context, arg DeactivateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, deactivateMenuItem, arg.ID, arg.OutletID))
}
