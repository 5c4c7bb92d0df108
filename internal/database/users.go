package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, outlet_id, email, full_name, hashed_password, role, active,
	created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.OutletID, &u.Email, &u.FullName, &u.HashedPassword, &u.Role, &u.Active,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

type CreateUserParams struct {
	OutletID       uuid.UUID
	Email          string
	FullName       string
	HashedPassword string
	Role           string
}

const createUser = `
INSERT INTO users (outlet_id, email, full_name, hashed_password, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, createUser,
		arg.OutletID, arg.Email, arg.FullName, arg.HashedPassword, arg.Role,
	))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND active`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUser, id))
}

const listUsersByOutlet = `
SELECT ` + userColumns + ` FROM users WHERE outlet_id = $1 ORDER BY full_name`

func (q *Queries) ListUsersByOutlet(ctx context.Context, outletID uuid.UUID) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsersByOutlet, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type DeactivateUserParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

const deactivateUser = `
UPDATE users
SET active = false, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING ` + userColumns

func (q *Queries) DeactivateUser(ctx context.Context, arg DeactivateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, deactivateUser, arg.ID, arg.OutletID))
}
