package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Outlet is one restaurant location. The tax rate configured here is
// snapshotted onto orders at creation time.
type Outlet struct {
	ID        uuid.UUID
	Name      string
	TaxRate   pgtype.Numeric
	CreatedAt time.Time
}

type User struct {
	ID             uuid.UUID
	OutletID       uuid.UUID
	Email          string
	FullName       string
	HashedPassword string
	Role           string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Category struct {
	ID        uuid.UUID
	OutletID  uuid.UUID
	Name      string
	SortOrder int32
	CreatedAt time.Time
}

type MenuItem struct {
	ID         uuid.UUID
	OutletID   uuid.UUID
	CategoryID pgtype.UUID
	Name       string
	UnitPrice  pgtype.Numeric
	Station    pgtype.Text
	Available  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type DiningTable struct {
	ID         uuid.UUID
	OutletID   uuid.UUID
	Label      string
	Seats      int32
	Status     string
	OccupiedAt pgtype.Timestamptz
	ClearedAt  pgtype.Timestamptz
	CreatedAt  time.Time
}

// Order is the header row. Version is the optimistic concurrency token:
// every write to the line set bumps it, and totals writes carry a
// WHERE version = <snapshot> guard.
type Order struct {
	ID             uuid.UUID
	OutletID       uuid.UUID
	OrderNumber    string
	TableID        pgtype.UUID
	OrderType      string
	Status         string
	Notes          pgtype.Text
	Subtotal       pgtype.Numeric
	TaxRate        pgtype.Numeric
	TaxAmount      pgtype.Numeric
	DiscountAmount pgtype.Numeric
	TipAmount      pgtype.Numeric
	TotalAmount    pgtype.Numeric
	Version        int32
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderLine snapshots the menu item's unit price at creation; edits never
// re-fetch it, preserving price-at-time-of-order.
type OrderLine struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	MenuItemID   uuid.UUID
	Quantity     int32
	UnitPrice    pgtype.Numeric
	Instructions pgtype.Text
	Status       string
	Station      pgtype.Text
	FiredAt      pgtype.Timestamptz
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Payment struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	Method         string
	Amount         pgtype.Numeric
	AmountReceived pgtype.Numeric
	ChangeAmount   pgtype.Numeric
	Reference      pgtype.Text
	Status         string
	ProcessedBy    uuid.UUID
	ProcessedAt    time.Time
}
