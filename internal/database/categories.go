package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const categoryColumns = `id, outlet_id, name, sort_order, created_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.OutletID, &c.Name, &c.SortOrder, &c.CreatedAt)
	return c, err
}

type CreateCategoryParams struct {
	OutletID  uuid.UUID
	Name      string
	SortOrder int32
}

const createCategory = `
INSERT INTO categories (outlet_id, name, sort_order)
VALUES ($1, $2, $3)
RETURNING ` + categoryColumns

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	return scanCategory(q.db.QueryRow(ctx, createCategory, arg.OutletID, arg.Name, arg.SortOrder))
}

const listCategories = `
SELECT ` + categoryColumns + ` FROM categories WHERE outlet_id = $1 ORDER BY sort_order, name`

func (q *Queries) ListCategories(ctx context.Context, outletID uuid.UUID) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

type UpdateCategoryParams struct {
	ID        uuid.UUID
	OutletID  uuid.UUID
	Name      string
	SortOrder int32
}

const updateCategory = `
UPDATE categories
SET name = $3, sort_order = $4
WHERE id = $1 AND outlet_id = $2
RETURNING ` + categoryColumns

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	return scanCategory(q.db.QueryRow(ctx, updateCategory, arg.ID, arg.OutletID, arg.Name, arg.SortOrder))
}

type DeleteCategoryParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

const deleteCategory = `DELETE FROM categories WHERE id = $1 AND outlet_id = $2`

func (q *Queries) DeleteCategory(ctx context.Context, arg DeleteCategoryParams) error {
	_, err := q.db.Exec(ctx, deleteCategory, arg.ID, arg.OutletID)
	return err
}
