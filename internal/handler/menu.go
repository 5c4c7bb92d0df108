package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
)

// MenuStore defines the database methods needed by menu handlers.
type MenuStore interface {
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	ListCategories(ctx context.Context, outletID uuid.UUID) ([]database.Category, error)
	UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error)
	DeleteCategory(ctx context.Context, arg database.DeleteCategoryParams) error

	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeactivateMenuItem(ctx context.Context, arg database.DeactivateMenuItemParams) (database.MenuItem, error)
}

// MenuHandler handles category and menu item endpoints.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
// Routes are mounted under /outlets/{outletID}.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Post("/categories", h.CreateCategory)
	r.Get("/categories", h.ListCategories)
	r.Put("/categories/{categoryID}", h.UpdateCategory)
	r.Delete("/categories/{categoryID}", h.DeleteCategory)

	r.Post("/menu-items", h.CreateMenuItem)
	r.Get("/menu-items", h.ListMenuItems)
	r.Get("/menu-items/{itemID}", h.GetMenuItem)
	r.Put("/menu-items/{itemID}", h.UpdateMenuItem)
	r.Delete("/menu-items/{itemID}", h.DeactivateMenuItem)
}

// --- Categories ---

type categoryRequest struct {
	Name      string `json:"name"`
	SortOrder int32  `json:"sort_order"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	OutletID  uuid.UUID `json:"outlet_id"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sort_order"`
}

func toCategoryResponse(c database.Category) categoryResponse {
	return categoryResponse{ID: c.ID, OutletID: c.OutletID, Name: c.Name, SortOrder: c.SortOrder}
}

func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	cat, err := h.store.CreateCategory(r.Context(), database.CreateCategoryParams{
		OutletID:  outletID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		log.Printf("ERROR: create category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(cat))
}

func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}

	cats, err := h.store.ListCategories(r.Context(), outletID)
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MenuHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	cat, err := h.store.UpdateCategory(r.Context(), database.UpdateCategoryParams{
		ID:        categoryID,
		OutletID:  outletID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: update category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(cat))
}

func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}

	if err := h.store.DeleteCategory(r.Context(), database.DeleteCategoryParams{
		ID:       categoryID,
		OutletID: outletID,
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "category still has menu items"})
			return
		}
		log.Printf("ERROR: delete category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Menu items ---

var validStations = map[string]bool{
	enum.StationGrill:    true,
	enum.StationFry:      true,
	enum.StationCold:     true,
	enum.StationBeverage: true,
	enum.StationDessert:  true,
}

type menuItemRequest struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Name       string     `json:"name"`
	UnitPrice  string     `json:"unit_price"`
	Station    *string    `json:"station"`
	Available  *bool      `json:"available"`
}

type menuItemResponse struct {
	ID         uuid.UUID  `json:"id"`
	OutletID   uuid.UUID  `json:"outlet_id"`
	CategoryID *uuid.UUID `json:"category_id"`
	Name       string     `json:"name"`
	UnitPrice  string     `json:"unit_price"`
	Station    *string    `json:"station"`
	Available  bool       `json:"available"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:         m.ID,
		OutletID:   m.OutletID,
		CategoryID: uuidPtr(m.CategoryID),
		Name:       m.Name,
		UnitPrice:  numericToString(m.UnitPrice),
		Station:    textPtr(m.Station),
		Available:  m.Available,
	}
}

func (h *MenuHandler) parseMenuItemRequest(r *http.Request) (menuItemRequest, pgtype.Numeric, string) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, pgtype.Numeric{}, "invalid request body"
	}
	if req.Name == "" {
		return req, pgtype.Numeric{}, "name is required"
	}
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil || price.IsNegative() {
		return req, pgtype.Numeric{}, "unit_price must be a non-negative decimal"
	}
	if req.Station != nil && !validStations[*req.Station] {
		return req, pgtype.Numeric{}, "invalid station"
	}
	return req, decimalToNumeric(price), ""
}

func (h *MenuHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}

	req, price, msg := h.parseMenuItemRequest(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		OutletID:   outletID,
		CategoryID: uuidOrNull(req.CategoryID),
		Name:       req.Name,
		UnitPrice:  price,
		Station:    textOrNull(req.Station),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

func (h *MenuHandler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}

	var categoryID pgtype.UUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		categoryID = pgtype.UUID{Bytes: id, Valid: true}
	}

	items, err := h.store.ListMenuItems(r.Context(), database.ListMenuItemsParams{
		OutletID:   outletID,
		CategoryID: categoryID,
	})
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]menuItemResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMenuItemResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MenuHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{ID: itemID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	req, price, msg := h.parseMenuItemRequest(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:         itemID,
		OutletID:   outletID,
		CategoryID: uuidOrNull(req.CategoryID),
		Name:       req.Name,
		UnitPrice:  price,
		Station:    textOrNull(req.Station),
		Available:  available,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuHandler) DeactivateMenuItem(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	item, err := h.store.DeactivateMenuItem(r.Context(), database.DeactivateMenuItemParams{
		ID:       itemID,
		OutletID: outletID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: deactivate menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}
