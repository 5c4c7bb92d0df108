// Package catalog resolves menu item references for order taking.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/reconcile"
)

// Store defines the DB methods needed to resolve menu items.
// Satisfied by *database.Queries.
type Store interface {
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	GetMenuItemByName(ctx context.Context, arg database.GetMenuItemByNameParams) (database.MenuItem, error)
}

// Service implements reconcile.Catalog on top of the menu item store.
type Service struct {
	store Store
}

// NewService creates a catalog Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Resolve looks a reference up by id first, falling back to an exact
// case-insensitive name match. Unavailable items resolve as not found so a
// stale client cannot order something taken off the menu.
func (s *Service) Resolve(ctx context.Context, outletID uuid.UUID, ref string) (reconcile.CatalogItem, error) {
	if ref == "" {
		return reconcile.CatalogItem{}, reconcile.ErrNotFound
	}

	var (
		item database.MenuItem
		err  error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		item, err = s.store.GetMenuItem(ctx, database.GetMenuItemParams{ID: id, OutletID: outletID})
	} else {
		item, err = s.store.GetMenuItemByName(ctx, database.GetMenuItemByNameParams{OutletID: outletID, Name: ref})
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return reconcile.CatalogItem{}, reconcile.ErrNotFound
	}
	if err != nil {
		return reconcile.CatalogItem{}, fmt.Errorf("get menu item: %w", err)
	}
	if !item.Available {
		return reconcile.CatalogItem{}, reconcile.ErrNotFound
	}

	resolved := reconcile.CatalogItem{
		ID:        item.ID,
		Name:      item.Name,
		UnitPrice: numericToDecimal(item.UnitPrice),
	}
	if item.Station.Valid {
		resolved.Station = item.Station.String
	}
	return resolved, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}
