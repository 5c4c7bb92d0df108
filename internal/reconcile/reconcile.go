// Package reconcile turns a batch of client-submitted order line edits into a
// write plan against the authoritative persisted line set, and recomputes
// order totals from scratch. It performs no persistence itself; the service
// layer applies plans transactionally.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/enum"
)

// ErrNotFound is returned by Catalog implementations when a menu item
// reference does not resolve.
var ErrNotFound = errors.New("menu item not found")

// Catalog resolves a menu item reference (id or exact name) for new lines.
type Catalog interface {
	Resolve(ctx context.Context, outletID uuid.UUID, ref string) (CatalogItem, error)
}

// CatalogItem is the resolved {id, name, unit price} triple. The unit price
// is snapshotted onto new lines at plan time.
type CatalogItem struct {
	ID        uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Station   string
}

// Line is an immutable snapshot of one persisted order line.
type Line struct {
	ID           uuid.UUID
	MenuItemID   uuid.UUID
	Quantity     int32
	UnitPrice    decimal.Decimal
	Instructions string
	Status       string
}

// Edit is one submitted intent. New lines carry no id (the zero uuid is the
// client-pending sentinel) and reference the catalog instead; removal is an
// explicit flag, never implied by a zero quantity.
type Edit struct {
	LineID       uuid.UUID
	IsNew        bool
	Remove       bool
	MenuItemRef  string
	Quantity     int32
	Instructions string
}

// SkipReason classifies per-edit rejections. Bad edits never abort the batch.
type SkipReason string

const (
	SkipUnknownMenuItem SkipReason = "unknown_menu_item"
	SkipInvalidQuantity SkipReason = "invalid_quantity"
	SkipUnknownLine     SkipReason = "unknown_line"
	SkipLineLocked      SkipReason = "line_locked"
)

// Update mutates an existing line. Cancel marks the line CANCELLED instead of
// touching quantity or instructions; cancelled lines drop out of totals but
// stay on the ticket history.
type Update struct {
	LineID       uuid.UUID
	Quantity     int32
	Instructions string
	Cancel       bool
}

// Insert materializes a client-pending line.
type Insert struct {
	MenuItemID   uuid.UUID
	Quantity     int32
	UnitPrice    decimal.Decimal
	Instructions string
	Station      string
}

// Skip records a rejected edit with a machine reason and a message fit for
// the cashier's screen.
type Skip struct {
	Edit    Edit       `json:"-"`
	Reason  SkipReason `json:"reason"`
	Message string     `json:"message"`
}

// WritePlan is the reconciler's output: three disjoint sets whose union,
// once applied, fully determines the order's new subtotal.
type WritePlan struct {
	Updates []Update
	Inserts []Insert
	Skips   []Skip
}

// Empty reports whether the plan writes nothing.
func (p WritePlan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Inserts) == 0
}

// Reconcile classifies each edit as update, insert, cancel, or skip against
// the persisted snapshot. Duplicate menu items among new lines merge by
// summing quantities, and a new line whose menu item already exists as an
// editable persisted line folds into an update on that line, so the server
// enforces deduplication no matter what the client sent. Edits are processed
// in submission order for merge purposes, but the returned plan is a set:
// equivalent batches in any order produce identical plans.
//
// Reconcile fails only on catalog infrastructure errors; order-level
// validation (existence, terminal status) belongs to the orchestrator.
func Reconcile(ctx context.Context, outletID uuid.UUID, lines []Line, edits []Edit, catalog Catalog) (WritePlan, error) {
	byID := make(map[uuid.UUID]Line, len(lines))
	// First editable persisted line per menu item, the merge target for
	// duplicate new-line submissions.
	editableByItem := make(map[uuid.UUID]uuid.UUID)
	for _, l := range lines {
		byID[l.ID] = l
		if l.Status == enum.LineStatusNew {
			if _, ok := editableByItem[l.MenuItemID]; !ok {
				editableByItem[l.MenuItemID] = l.ID
			}
		}
	}

	updates := make(map[uuid.UUID]Update)
	inserts := make(map[uuid.UUID]Insert)
	var skips []Skip

	for _, e := range edits {
		switch {
		case e.Remove:
			line, ok := byID[e.LineID]
			if !ok {
				skips = append(skips, skip(e, SkipUnknownLine, "line does not belong to this order"))
				continue
			}
			if line.Status == enum.LineStatusDelivered || line.Status == enum.LineStatusCancelled {
				skips = append(skips, skip(e, SkipLineLocked, fmt.Sprintf("%s line cannot be removed", line.Status)))
				continue
			}
			updates[line.ID] = Update{LineID: line.ID, Cancel: true}

		case e.IsNew:
			if e.Quantity < 1 {
				skips = append(skips, skip(e, SkipInvalidQuantity, "quantity must be at least 1"))
				continue
			}
			item, err := catalog.Resolve(ctx, outletID, e.MenuItemRef)
			if errors.Is(err, ErrNotFound) {
				skips = append(skips, skip(e, SkipUnknownMenuItem, fmt.Sprintf("menu item %q not found", e.MenuItemRef)))
				continue
			}
			if err != nil {
				return WritePlan{}, fmt.Errorf("resolve menu item %q: %w", e.MenuItemRef, err)
			}

			// Merge into an editable persisted line for the same item,
			// unless that line is already being cancelled in this batch.
			if lineID, ok := editableByItem[item.ID]; ok && !updates[lineID].Cancel {
				base := byID[lineID].Quantity
				instructions := byID[lineID].Instructions
				if u, ok := updates[lineID]; ok {
					base = u.Quantity
					instructions = u.Instructions
				}
				if e.Instructions != "" {
					instructions = e.Instructions
				}
				updates[lineID] = Update{LineID: lineID, Quantity: base + e.Quantity, Instructions: instructions}
				continue
			}

			if ins, ok := inserts[item.ID]; ok {
				ins.Quantity += e.Quantity
				if e.Instructions != "" {
					ins.Instructions = e.Instructions
				}
				inserts[item.ID] = ins
				continue
			}
			inserts[item.ID] = Insert{
				MenuItemID:   item.ID,
				Quantity:     e.Quantity,
				UnitPrice:    item.UnitPrice,
				Instructions: e.Instructions,
				Station:      item.Station,
			}

		default:
			line, ok := byID[e.LineID]
			if !ok {
				skips = append(skips, skip(e, SkipUnknownLine, "line does not belong to this order"))
				continue
			}
			if line.Status != enum.LineStatusNew {
				skips = append(skips, skip(e, SkipLineLocked, fmt.Sprintf("%s line can no longer be edited", line.Status)))
				continue
			}
			if e.Quantity < 1 {
				skips = append(skips, skip(e, SkipInvalidQuantity, "quantity must be at least 1"))
				continue
			}
			if u, ok := updates[line.ID]; ok && u.Cancel {
				// A cancel already claimed this line in the same batch.
				skips = append(skips, skip(e, SkipLineLocked, "line is being removed in this request"))
				continue
			}
			updates[line.ID] = Update{LineID: line.ID, Quantity: e.Quantity, Instructions: e.Instructions}
		}
	}

	plan := WritePlan{Skips: skips}
	for _, u := range updates {
		plan.Updates = append(plan.Updates, u)
	}
	for _, ins := range inserts {
		plan.Inserts = append(plan.Inserts, ins)
	}
	// Deterministic plan regardless of edit submission order.
	sort.Slice(plan.Updates, func(i, j int) bool {
		return plan.Updates[i].LineID.String() < plan.Updates[j].LineID.String()
	})
	sort.Slice(plan.Inserts, func(i, j int) bool {
		return plan.Inserts[i].MenuItemID.String() < plan.Inserts[j].MenuItemID.String()
	})
	return plan, nil
}

func skip(e Edit, reason SkipReason, msg string) Skip {
	return Skip{Edit: e, Reason: reason, Message: msg}
}
