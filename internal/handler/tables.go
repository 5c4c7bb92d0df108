package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tavolo-pos/api/internal/database"
)

// TableStore defines the database methods needed by table handlers.
type TableStore interface {
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.DiningTable, error)
	ListTables(ctx context.Context, outletID uuid.UUID) ([]database.DiningTable, error)
	OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.DiningTable, error)
	ReleaseTable(ctx context.Context, arg database.ReleaseTableParams) (database.DiningTable, error)
	DeleteTable(ctx context.Context, arg database.DeleteTableParams) error
}

// TableHandler handles dining table endpoints.
type TableHandler struct {
	store TableStore
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore) *TableHandler {
	return &TableHandler{store: store}
}

// RegisterRoutes registers table endpoints on the given Chi router.
// Routes are mounted under /outlets/{outletID}.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tables", h.Create)
	r.Get("/tables", h.List)
	r.Post("/tables/{tableID}/occupy", h.Occupy)
	r.Post("/tables/{tableID}/release", h.Release)
	r.Delete("/tables/{tableID}", h.Delete)
}

type createTableRequest struct {
	Label string `json:"label"`
	Seats int32  `json:"seats"`
}

type tableResponse struct {
	ID         uuid.UUID  `json:"id"`
	OutletID   uuid.UUID  `json:"outlet_id"`
	Label      string     `json:"label"`
	Seats      int32      `json:"seats"`
	Status     string     `json:"status"`
	OccupiedAt *time.Time `json:"occupied_at,omitempty"`
}

func toTableResponse(t database.DiningTable) tableResponse {
	resp := tableResponse{
		ID:       t.ID,
		OutletID: t.OutletID,
		Label:    t.Label,
		Seats:    t.Seats,
		Status:   t.Status,
	}
	if t.OccupiedAt.Valid {
		ts := t.OccupiedAt.Time
		resp.OccupiedAt = &ts
	}
	return resp
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}

	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Label == "" || req.Seats < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "label and seats >= 1 are required"})
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		OutletID: outletID,
		Label:    req.Label,
		Seats:    req.Seats,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "table label already exists"})
			return
		}
		log.Printf("ERROR: create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toTableResponse(table))
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}

	tables, err := h.store.ListTables(r.Context(), outletID)
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]tableResponse, 0, len(tables))
	for _, t := range tables {
		out = append(out, toTableResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// Occupy seats a party at a free table.
func (h *TableHandler) Occupy(w http.ResponseWriter, r *http.Request) {
	outletID, tableID, ok := h.parsePath(w, r)
	if !ok {
		return
	}

	table, err := h.store.OccupyTable(r.Context(), database.OccupyTableParams{ID: tableID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "table is not free"})
			return
		}
		log.Printf("ERROR: occupy table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toTableResponse(table))
}

// Release clears an occupied table.
func (h *TableHandler) Release(w http.ResponseWriter, r *http.Request) {
	outletID, tableID, ok := h.parsePath(w, r)
	if !ok {
		return
	}

	table, err := h.store.ReleaseTable(r.Context(), database.ReleaseTableParams{ID: tableID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "table is not occupied"})
			return
		}
		log.Printf("ERROR: release table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toTableResponse(table))
}

func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	outletID, tableID, ok := h.parsePath(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteTable(r.Context(), database.DeleteTableParams{ID: tableID, OutletID: outletID}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "table has orders"})
			return
		}
		log.Printf("ERROR: delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TableHandler) parsePath(w http.ResponseWriter, r *http.Request) (outletID, tableID uuid.UUID, ok bool) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return uuid.Nil, uuid.Nil, false
	}
	tableID, err = uuid.Parse(chi.URLParam(r, "tableID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table id"})
		return uuid.Nil, uuid.Nil, false
	}
	return outletID, tableID, true
}
